package collector

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tidwall/gjson"

	"github.com/kurihiro0119/github-activity-report/internal/domain"
	apperrors "github.com/kurihiro0119/github-activity-report/internal/errors"
)

// FetchDiscussionComments retrieves discussion comments and their replies
// created within the window. Discussions are ordered by last update, so
// paging stops once a page ends before the window.
func (c *githubCollector) FetchDiscussionComments(ctx context.Context, owner, name string, window domain.ReportWindow) ([]domain.Comment, error) {
	repo := owner + "/" + name
	var comments []domain.Comment
	cursor := ""

	for {
		var raw json.RawMessage
		vars := map[string]interface{}{
			"owner":  owner,
			"name":   name,
			"cursor": cursorVar(cursor),
		}
		if err := c.query(ctx, "discussions of "+repo, discussionCommentsQuery, vars, &raw); err != nil {
			return nil, err
		}

		repository := gjson.GetBytes(raw, "repository")
		if !repository.Exists() || repository.Type == gjson.Null {
			return nil, apperrors.NewNotFoundError("repository " + repo)
		}

		conn := repository.Get("discussions")
		nodes := conn.Get("nodes").Array()
		for _, discussion := range nodes {
			op := discussion.Get("author.login").String()
			thread := discussion.Get("comments")
			comments = appendThreadComments(comments, thread, op, window)

			var err error
			comments, err = c.fetchEarlierComments(ctx, "discussion comments of "+repo, earlierDiscussionCommentsQuery,
				discussion.Get("id").String(), earlierCursor(thread, window), op, window, comments)
			if err != nil {
				return nil, err
			}
		}

		if !conn.Get("pageInfo.hasNextPage").Bool() {
			break
		}
		if len(nodes) > 0 && nodes[len(nodes)-1].Get("updatedAt").Time().Before(window.Start) {
			break
		}
		cursor = conn.Get("pageInfo.endCursor").String()
	}

	return comments, nil
}

// appendThreadComments adds a page of thread comments and their replies
func appendThreadComments(comments []domain.Comment, conn gjson.Result, op string, window domain.ReportWindow) []domain.Comment {
	conn.Get("nodes").ForEach(func(_, comment gjson.Result) bool {
		comments = appendComment(comments, comment, op, window)
		comment.Get("replies.nodes").ForEach(func(_, reply gjson.Result) bool {
			comments = appendComment(comments, reply, op, window)
			return true
		})
		return true
	})
	return comments
}

// earlierCursor returns the cursor of the previous comment page, or "" when
// the oldest comment fetched already predates the window
func earlierCursor(conn gjson.Result, window domain.ReportWindow) string {
	if !conn.Get("pageInfo.hasPreviousPage").Bool() {
		return ""
	}
	nodes := conn.Get("nodes").Array()
	if len(nodes) == 0 || nodes[0].Get("createdAt").Time().Before(window.Start) {
		return ""
	}
	return conn.Get("pageInfo.startCursor").String()
}

// fetchEarlierComments walks a thread's comments backwards from cursor until
// they predate the window
func (c *githubCollector) fetchEarlierComments(ctx context.Context, op, query, id, cursor, threadAuthor string, window domain.ReportWindow, comments []domain.Comment) ([]domain.Comment, error) {
	for cursor != "" && id != "" {
		var raw json.RawMessage
		vars := map[string]interface{}{"id": id, "cursor": cursor}
		if err := c.query(ctx, op, query, vars, &raw); err != nil {
			return nil, err
		}
		conn := gjson.GetBytes(raw, "node.comments")
		comments = appendThreadComments(comments, conn, threadAuthor, window)
		cursor = earlierCursor(conn, window)
	}
	return comments, nil
}

func appendComment(comments []domain.Comment, node gjson.Result, op string, window domain.ReportWindow) []domain.Comment {
	author := node.Get("author.login").String()
	if author == "" || author == op {
		return comments
	}
	createdAt := node.Get("createdAt").Time()
	if !window.Contains(createdAt) {
		return comments
	}
	return append(comments, domain.Comment{Author: author, CreatedAt: createdAt})
}

type issueCommentsResponse struct {
	Repository *struct {
		Issues struct {
			PageInfo pageInfo `json:"pageInfo"`
			Nodes    []struct {
				ID       string `json:"id"`
				Author   *actor `json:"author"`
				Comments struct {
					PageInfo struct {
						HasPreviousPage bool   `json:"hasPreviousPage"`
						StartCursor     string `json:"startCursor"`
					} `json:"pageInfo"`
					Nodes []struct {
						CreatedAt time.Time `json:"createdAt"`
						Author    *actor    `json:"author"`
					} `json:"nodes"`
				} `json:"comments"`
			} `json:"nodes"`
		} `json:"issues"`
	} `json:"repository"`
}

// FetchIssueComments retrieves comments on issues updated since the window
// start, keeping those created within the window
func (c *githubCollector) FetchIssueComments(ctx context.Context, owner, name string, window domain.ReportWindow) ([]domain.Comment, error) {
	repo := owner + "/" + name
	var comments []domain.Comment
	cursor := ""

	for {
		var resp issueCommentsResponse
		vars := map[string]interface{}{
			"owner":  owner,
			"name":   name,
			"since":  window.Start.Format(time.RFC3339),
			"cursor": cursorVar(cursor),
		}
		if err := c.query(ctx, "issue comments of "+repo, issueCommentsQuery, vars, &resp); err != nil {
			return nil, err
		}
		if resp.Repository == nil {
			return nil, apperrors.NewNotFoundError("repository " + repo)
		}

		conn := resp.Repository.Issues
		for _, issue := range conn.Nodes {
			op := ""
			if issue.Author != nil {
				op = issue.Author.Login
			}
			for _, comment := range issue.Comments.Nodes {
				if comment.Author == nil || comment.Author.Login == "" || comment.Author.Login == op {
					continue
				}
				if !window.Contains(comment.CreatedAt) {
					continue
				}
				comments = append(comments, domain.Comment{Author: comment.Author.Login, CreatedAt: comment.CreatedAt})
			}

			page := issue.Comments
			if !page.PageInfo.HasPreviousPage || len(page.Nodes) == 0 || page.Nodes[0].CreatedAt.Before(window.Start) {
				continue
			}
			var err error
			comments, err = c.fetchEarlierComments(ctx, "issue comments of "+repo, earlierIssueCommentsQuery,
				issue.ID, page.PageInfo.StartCursor, op, window, comments)
			if err != nil {
				return nil, err
			}
		}

		if !conn.PageInfo.HasNextPage {
			break
		}
		cursor = conn.PageInfo.EndCursor
	}

	return comments, nil
}
