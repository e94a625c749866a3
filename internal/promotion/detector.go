package promotion

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kurihiro0119/github-activity-report/internal/domain"
	apperrors "github.com/kurihiro0119/github-activity-report/internal/errors"
	"github.com/kurihiro0119/github-activity-report/internal/logging"
)

// Source provides the pull request data promotions are detected from
type Source interface {
	FetchMergedPullRequests(ctx context.Context, owner, name string, window domain.ReportWindow) ([]domain.PullRequestRef, error)
	ListPullRequestFiles(ctx context.Context, owner, name string, number int) ([]domain.PullRequestFile, error)
	GetFileContent(ctx context.Context, owner, name, path string) (string, error)
}

// packageDirs are the tap directories that hold package definitions
var packageDirs = []string{"Formula/", "Casks/"}

var descPatterns = []*regexp.Regexp{
	regexp.MustCompile(`desc[ \t]+"([^"\n]+)"`),
	regexp.MustCompile(`desc[ \t]+'([^'\n]+)'`),
}

// Detector finds packages newly added to Homebrew taps
type Detector struct {
	source          Source
	productionTap   string
	experimentalTap string
	log             *logrus.Entry
}

// NewDetector creates a detector for the given owner/name tap repositories
func NewDetector(source Source, productionTap, experimentalTap string) *Detector {
	return &Detector{
		source:          source,
		productionTap:   productionTap,
		experimentalTap: experimentalTap,
		log:             logging.Log.WithField("component", "promotion"),
	}
}

// FetchTapPromotions returns packages added to the production tap within the window
func (d *Detector) FetchTapPromotions(ctx context.Context, window domain.ReportWindow) ([]domain.TapPromotion, error) {
	return d.fetchAdditions(ctx, d.productionTap, window)
}

// FetchExperimentalAdditions returns packages added to the experimental tap within the window
func (d *Detector) FetchExperimentalAdditions(ctx context.Context, window domain.ReportWindow) ([]domain.TapPromotion, error) {
	return d.fetchAdditions(ctx, d.experimentalTap, window)
}

func (d *Detector) fetchAdditions(ctx context.Context, repo string, window domain.ReportWindow) ([]domain.TapPromotion, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok {
		return nil, fmt.Errorf("invalid tap repository %q", repo)
	}
	log := d.log.WithField("repo", repo)

	prs, err := d.source.FetchMergedPullRequests(ctx, owner, name, window)
	if err != nil {
		return nil, err
	}
	log.Infof("Found %d merged PRs", len(prs))

	additions := []domain.TapPromotion{}
	for _, pr := range prs {
		files, err := d.source.ListPullRequestFiles(ctx, owner, name, pr.Number)
		if err != nil {
			return nil, fmt.Errorf("failed to list files of %s#%d: %w", repo, pr.Number, err)
		}

		for _, f := range files {
			pkg, ok := PackageName(f)
			if !ok {
				continue
			}

			description, err := d.description(ctx, owner, name, f.Filename)
			if err != nil {
				return nil, err
			}

			additions = append(additions, domain.TapPromotion{
				PackageName: pkg,
				Description: description,
				MergedAt:    pr.MergedAt,
				PRNumber:    pr.Number,
				PRURL:       pr.URL,
			})
			log.Infof("Found addition: %s (PR #%d, %s)", pkg, pr.Number, pr.MergedAt.Format("2006-01-02"))
		}
	}

	log.Infof("Total additions found: %d", len(additions))
	return additions, nil
}

// description reads a package file and parses its desc stanza. Read
// failures yield a nil description unless they must abort the run.
func (d *Detector) description(ctx context.Context, owner, name, path string) (*string, error) {
	content, err := d.source.GetFileContent(ctx, owner, name, path)
	if err != nil {
		if apperrors.IsFatal(err) {
			return nil, err
		}
		d.log.Warnf("Failed to fetch description for %s: %v", path, err)
		return nil, nil
	}
	return ParseDescription(content), nil
}

// PackageName returns the package defined by an added tap file
func PackageName(f domain.PullRequestFile) (string, bool) {
	if f.Status != "added" {
		return "", false
	}
	for _, dir := range packageDirs {
		if strings.HasPrefix(f.Filename, dir) {
			return strings.TrimSuffix(strings.TrimPrefix(f.Filename, dir), ".rb"), true
		}
	}
	return "", false
}

// ParseDescription extracts the desc value from a formula or cask, trying
// double quotes before single quotes
func ParseDescription(content string) *string {
	for _, p := range descPatterns {
		if m := p.FindStringSubmatch(content); m != nil {
			desc := m[1]
			return &desc
		}
	}
	return nil
}
