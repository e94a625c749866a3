package promotion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kurihiro0119/github-activity-report/internal/domain"
	apperrors "github.com/kurihiro0119/github-activity-report/internal/errors"
)

type fakeSource struct {
	prs      map[string][]domain.PullRequestRef
	files    map[int][]domain.PullRequestFile
	contents map[string]string
	fileErrs map[string]error
}

func (f *fakeSource) FetchMergedPullRequests(_ context.Context, owner, name string, _ domain.ReportWindow) ([]domain.PullRequestRef, error) {
	return f.prs[owner+"/"+name], nil
}

func (f *fakeSource) ListPullRequestFiles(_ context.Context, _, _ string, number int) ([]domain.PullRequestFile, error) {
	return f.files[number], nil
}

func (f *fakeSource) GetFileContent(_ context.Context, _, _, path string) (string, error) {
	if err := f.fileErrs[path]; err != nil {
		return "", err
	}
	content, ok := f.contents[path]
	if !ok {
		return "", apperrors.NewNotFoundError(path)
	}
	return content, nil
}

func TestFetchTapPromotions(t *testing.T) {
	t.Parallel()

	merged := time.Date(2026, 1, 12, 8, 0, 0, 0, time.UTC)
	source := &fakeSource{
		prs: map[string][]domain.PullRequestRef{
			"ublue-os/homebrew-tap": {
				{Number: 10, URL: "https://github.com/ublue-os/homebrew-tap/pull/10", MergedAt: merged},
				{Number: 11, URL: "https://github.com/ublue-os/homebrew-tap/pull/11", MergedAt: merged},
			},
			"ublue-os/homebrew-experimental-tap": {
				{Number: 3, URL: "https://github.com/ublue-os/homebrew-experimental-tap/pull/3", MergedAt: merged},
			},
		},
		files: map[int][]domain.PullRequestFile{
			10: {
				{Filename: "Formula/foo.rb", Status: "added"},
				{Filename: "Casks/bar.rb", Status: "added"},
				{Filename: "README.md", Status: "added"},
				{Filename: "Formula/old.rb", Status: "modified"},
			},
			11: {{Filename: "Casks/baz.rb", Status: "added"}},
			3:  {{Filename: "Formula/exp.rb", Status: "added"}},
		},
		contents: map[string]string{
			"Formula/foo.rb": "class Foo < Formula\n  desc \"Foo tool\"\nend\n",
			"Casks/bar.rb":   "cask \"bar\" do\n  desc 'Bar app'\nend\n",
			"Formula/exp.rb": "class Exp < Formula\nend\n",
		},
		fileErrs: map[string]error{
			"Casks/baz.rb": errors.New("connection refused"),
		},
	}
	d := NewDetector(source, "ublue-os/homebrew-tap", "ublue-os/homebrew-experimental-tap")

	got, err := d.FetchTapPromotions(context.Background(), domain.ReportWindow{})
	if err != nil {
		t.Fatalf("FetchTapPromotions() unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("promotions = %+v, want 3", got)
	}

	if got[0].PackageName != "foo" || got[0].DescriptionOr("") != "Foo tool" || got[0].PRNumber != 10 {
		t.Fatalf("first promotion = %+v", got[0])
	}
	if got[1].PackageName != "bar" || got[1].DescriptionOr("") != "Bar app" {
		t.Fatalf("second promotion = %+v", got[1])
	}
	if got[2].PackageName != "baz" || got[2].Description != nil || !got[2].MergedAt.Equal(merged) {
		t.Fatalf("third promotion = %+v", got[2])
	}

	exp, err := d.FetchExperimentalAdditions(context.Background(), domain.ReportWindow{})
	if err != nil {
		t.Fatalf("FetchExperimentalAdditions() unexpected error: %v", err)
	}
	if len(exp) != 1 || exp[0].PackageName != "exp" || exp[0].Description != nil {
		t.Fatalf("experimental = %+v", exp)
	}
}

func TestFatalContentErrorAborts(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		prs:      map[string][]domain.PullRequestRef{"o/tap": {{Number: 1}}},
		files:    map[int][]domain.PullRequestFile{1: {{Filename: "Formula/x.rb", Status: "added"}}},
		fileErrs: map[string]error{"Formula/x.rb": apperrors.NewRateLimitedError("limit", time.Time{}, nil)},
	}
	d := NewDetector(source, "o/tap", "o/exp")

	if _, err := d.FetchTapPromotions(context.Background(), domain.ReportWindow{}); !apperrors.IsRateLimited(err) {
		t.Fatalf("error = %v, want rate limited", err)
	}
}

func TestParseDescription(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		content string
		want    string
		wantNil bool
	}{
		{name: "double quotes", content: `desc "A tool"`, want: "A tool"},
		{name: "single quotes", content: `desc   'Another tool'`, want: "Another tool"},
		{name: "double preferred", content: "desc 'first'\ndesc \"second\"", want: "second"},
		{name: "missing", content: "class X < Formula\nend", wantNil: true},
		{name: "empty value", content: `desc ""`, wantNil: true},
		{name: "unterminated line", content: "desc \"broken\n  url \"https://example.com\"", wantNil: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ParseDescription(tc.content)
			if tc.wantNil {
				if got != nil {
					t.Fatalf("ParseDescription() = %q, want nil", *got)
				}
				return
			}
			if got == nil || *got != tc.want {
				t.Fatalf("ParseDescription() = %v, want %q", got, tc.want)
			}
		})
	}
}

func TestPackageName(t *testing.T) {
	t.Parallel()

	if name, ok := PackageName(domain.PullRequestFile{Filename: "Casks/my-app.rb", Status: "added"}); !ok || name != "my-app" {
		t.Fatalf("PackageName() = %q, %v", name, ok)
	}
	if _, ok := PackageName(domain.PullRequestFile{Filename: "Formula/foo.rb", Status: "removed"}); ok {
		t.Fatalf("removed file should not count")
	}
	if _, ok := PackageName(domain.PullRequestFile{Filename: "docs/Formula/foo.rb", Status: "added"}); ok {
		t.Fatalf("nested path should not count")
	}
}
