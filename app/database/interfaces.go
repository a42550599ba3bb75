package database

type PostStore interface {
	UpsertPost(post Post) error
	GetPostBySlug(slug string) (*Post, error)
	ListPosts(status string) ([]Post, error)
	GetPostStats() (int, int, int, error)
}

type FetchStore interface {
	RecordFetch(url, cacheKey string, hit bool) error
	GetFetch(cacheKey string) (*Fetch, error)
	GetFetchCount() (int, error)
}

var (
	_ PostStore  = (*PostRepository)(nil)
	_ FetchStore = (*FetchRepository)(nil)
)
