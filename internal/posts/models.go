package posts

import "time"

// Post is a feed entry. UserID is nil for anonymous authorship; AuthorName
// is captured denormalized so anonymous and deleted-account posts keep a
// display name.
type Post struct {
	ID         int64     `json:"id"`
	UserID     *int64    `json:"user_id,omitempty"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	Likes      int64     `json:"likes"`
	Tags       string    `json:"tags"`
	ImageURL   *string   `json:"image_url,omitempty"`
	Pinned     bool      `json:"pinned"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreatePostRequest is the body for POST /api/purepulse/post
type CreatePostRequest struct {
	Content  string `json:"content" binding:"required"`
	Tags     string `json:"tags"`
	ImageURL string `json:"image_url"`
}

// CreateCommunityPostRequest is the body for POST /api/community/posts.
// Anonymous authorship is permitted, so author_name is explicit.
type CreateCommunityPostRequest struct {
	UserID     *int64 `json:"user_id"`
	AuthorName string `json:"author_name" binding:"required,max=50"`
	Content    string `json:"content" binding:"required"`
	Tags       string `json:"tags"`
}

// UpdatePostRequest is the body for PUT /api/purepulse/post/:id
type UpdatePostRequest struct {
	Content  *string `json:"content,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
}
