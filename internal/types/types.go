package types

type Alert struct {
	ID        int64   `json:"id"`
	ChatID    int64   `json:"chat_id"`
	Asset     string  `json:"asset"`
	Target    float64 `json:"target"`
	CreatedAt string  `json:"created_at"`
}

type Article struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	PubDate string `json:"pubDate"`
}
