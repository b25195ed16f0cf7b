package github

import "fmt"

// Сфабрикованные демо-данные, подставляемые при отказе GitHub API.
// Любая подстановка логируется вызывающим кодом на уровне WARN.

// sampleRepositories возвращает демо-список репозиториев
func sampleRepositories() []RemoteRepo {
	return []RemoteRepo{
		{
			Owner:       "codecrew-demo",
			Name:        "web-platform",
			FullName:    "codecrew-demo/web-platform",
			Description: "Demo repository: bounty platform frontend",
			URL:         "https://github.com/codecrew-demo/web-platform",
			Stars:       128,
			Forks:       24,
			OpenIssues:  7,
		},
		{
			Owner:       "codecrew-demo",
			Name:        "token-contracts",
			FullName:    "codecrew-demo/token-contracts",
			Description: "Demo repository: escrow contract suite",
			URL:         "https://github.com/codecrew-demo/token-contracts",
			Stars:       64,
			Forks:       11,
			OpenIssues:  3,
		},
		{
			Owner:       "codecrew-demo",
			Name:        "docs",
			FullName:    "codecrew-demo/docs",
			Description: "Demo repository: contributor documentation",
			URL:         "https://github.com/codecrew-demo/docs",
			Stars:       17,
			Forks:       5,
			OpenIssues:  2,
		},
	}
}

// sampleIssues возвращает демо-список issue для репозитория
func sampleIssues(owner, repo string) []RemoteIssue {
	base := fmt.Sprintf("https://github.com/%s/%s/issues", owner, repo)

	return []RemoteIssue{
		{
			Number: 1,
			Title:  "Fix token balance rounding on dashboard",
			Body:   "Balances above 1000 tokens lose the last digit in the summary card.",
			URL:    fmt.Sprintf("%s/1", base),
			State:  "open",
			Labels: []string{"bug"},
		},
		{
			Number: 2,
			Title:  "Add dark theme support",
			Body:   "Contributors keep asking for a dark theme toggle.",
			URL:    fmt.Sprintf("%s/2", base),
			State:  "open",
			Labels: []string{"enhancement"},
		},
		{
			Number: 3,
			Title:  "Document pool funding limits",
			Body:   "The daily deposit cap is not mentioned anywhere in the docs.",
			URL:    fmt.Sprintf("%s/3", base),
			State:  "open",
			Labels: []string{"docs"},
		},
	}
}
