package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/kurihiro0119/github-activity-report/internal/domain"
	apperrors "github.com/kurihiro0119/github-activity-report/internal/errors"
)

type projectItemsResponse struct {
	Organization *struct {
		ProjectV2 *struct {
			Items struct {
				PageInfo pageInfo `json:"pageInfo"`
				Nodes    []struct {
					ID          string `json:"id"`
					FieldValues struct {
						Nodes []struct {
							Name  string `json:"name"`
							Field struct {
								Name string `json:"name"`
							} `json:"field"`
						} `json:"nodes"`
					} `json:"fieldValues"`
					Content *struct {
						Typename   string          `json:"__typename"`
						Number     int             `json:"number"`
						Title      string          `json:"title"`
						URL        string          `json:"url"`
						ClosedAt   *time.Time      `json:"closedAt"`
						MergedAt   *time.Time      `json:"mergedAt"`
						Author     *actor          `json:"author"`
						Labels     labelConnection `json:"labels"`
						Repository struct {
							NameWithOwner string `json:"nameWithOwner"`
						} `json:"repository"`
					} `json:"content"`
				} `json:"nodes"`
			} `json:"items"`
		} `json:"projectV2"`
	} `json:"organization"`
}

// FetchProjectItems retrieves every item of an organization project board
func (c *githubCollector) FetchProjectItems(ctx context.Context, org string, number int) ([]domain.BoardItem, error) {
	op := fmt.Sprintf("project %s/%d", org, number)
	var items []domain.BoardItem
	cursor := ""

	for {
		var resp projectItemsResponse
		vars := map[string]interface{}{
			"org":    org,
			"number": number,
			"cursor": cursorVar(cursor),
		}
		if err := c.query(ctx, op, projectItemsQuery, vars, &resp); err != nil {
			return nil, err
		}
		if resp.Organization == nil || resp.Organization.ProjectV2 == nil {
			return nil, apperrors.NewNotFoundError(op)
		}

		conn := resp.Organization.ProjectV2.Items
		for _, node := range conn.Nodes {
			if node.Content == nil {
				continue
			}
			fields := make(map[string]string)
			for _, fv := range node.FieldValues.Nodes {
				if fv.Field.Name != "" {
					fields[fv.Field.Name] = fv.Name
				}
			}

			content := node.Content
			item := domain.WorkItem{
				Number:     content.Number,
				Title:      content.Title,
				URL:        content.URL,
				Repository: content.Repository.NameWithOwner,
				Labels:     content.Labels.toDomain(),
			}
			if content.Author != nil {
				item.Author = content.Author.Login
			}
			switch content.Typename {
			case "PullRequest":
				item.Type = domain.ItemTypePullRequest
				if content.MergedAt != nil {
					item.ClosedAt = *content.MergedAt
				}
			case "Issue":
				item.Type = domain.ItemTypeIssue
				if content.ClosedAt != nil {
					item.ClosedAt = *content.ClosedAt
				}
			default:
				item.Type = domain.ItemTypeDraftIssue
			}

			items = append(items, domain.BoardItem{ID: node.ID, Item: item, Fields: fields})
		}

		if !conn.PageInfo.HasNextPage {
			break
		}
		cursor = conn.PageInfo.EndCursor
	}

	return items, nil
}
