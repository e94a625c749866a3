package collector

const closedIssuesQuery = `
query($owner: String!, $name: String!, $since: DateTime!, $cursor: String) {
  repository(owner: $owner, name: $name) {
    issues(first: 100, after: $cursor, states: CLOSED, filterBy: {since: $since}) {
      pageInfo { hasNextPage endCursor }
      nodes {
        number
        title
        url
        closedAt
        labels(first: 10) { nodes { name color } }
        author { login }
      }
    }
  }
}`

const mergedPullRequestsQuery = `
query($owner: String!, $name: String!, $cursor: String) {
  repository(owner: $owner, name: $name) {
    pullRequests(first: 100, after: $cursor, states: MERGED, orderBy: {field: UPDATED_AT, direction: DESC}) {
      pageInfo { hasNextPage endCursor }
      nodes {
        number
        title
        url
        mergedAt
        updatedAt
        labels(first: 10) { nodes { name color } }
        author { login }
      }
    }
  }
}`

const discussionCommentsQuery = `
query($owner: String!, $name: String!, $cursor: String) {
  repository(owner: $owner, name: $name) {
    discussions(first: 50, after: $cursor, orderBy: {field: UPDATED_AT, direction: DESC}) {
      pageInfo { hasNextPage endCursor }
      nodes {
        id
        updatedAt
        author { login }
        comments(last: 100) {
          pageInfo { hasPreviousPage startCursor }
          nodes {
            createdAt
            author { login }
            replies(last: 50) {
              nodes { createdAt author { login } }
            }
          }
        }
      }
    }
  }
}`

const issueCommentsQuery = `
query($owner: String!, $name: String!, $since: DateTime!, $cursor: String) {
  repository(owner: $owner, name: $name) {
    issues(first: 50, after: $cursor, filterBy: {since: $since}, orderBy: {field: UPDATED_AT, direction: DESC}) {
      pageInfo { hasNextPage endCursor }
      nodes {
        id
        author { login }
        comments(last: 100) {
          pageInfo { hasPreviousPage startCursor }
          nodes { createdAt author { login } }
        }
      }
    }
  }
}`

// earlierDiscussionCommentsQuery pages backwards through one discussion
const earlierDiscussionCommentsQuery = `
query($id: ID!, $cursor: String) {
  node(id: $id) {
    ... on Discussion {
      comments(last: 100, before: $cursor) {
        pageInfo { hasPreviousPage startCursor }
        nodes {
          createdAt
          author { login }
          replies(last: 50) {
            nodes { createdAt author { login } }
          }
        }
      }
    }
  }
}`

// earlierIssueCommentsQuery pages backwards through one issue
const earlierIssueCommentsQuery = `
query($id: ID!, $cursor: String) {
  node(id: $id) {
    ... on Issue {
      comments(last: 100, before: $cursor) {
        pageInfo { hasPreviousPage startCursor }
        nodes { createdAt author { login } }
      }
    }
  }
}`

const projectItemsQuery = `
query($org: String!, $number: Int!, $cursor: String) {
  organization(login: $org) {
    projectV2(number: $number) {
      items(first: 100, after: $cursor) {
        pageInfo { hasNextPage endCursor }
        nodes {
          id
          fieldValues(first: 20) {
            nodes {
              ... on ProjectV2ItemFieldSingleSelectValue {
                name
                field { ... on ProjectV2SingleSelectField { name } }
              }
            }
          }
          content {
            __typename
            ... on Issue {
              number
              title
              url
              closedAt
              repository { nameWithOwner }
              author { login }
              labels(first: 10) { nodes { name color } }
            }
            ... on PullRequest {
              number
              title
              url
              mergedAt
              repository { nameWithOwner }
              author { login }
              labels(first: 10) { nodes { name color } }
            }
            ... on DraftIssue {
              title
            }
          }
        }
      }
    }
  }
}`
