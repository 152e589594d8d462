package models

import (
	"sync/atomic"
	"time"
)

// DefaultPreviewLength is the number of characters String() keeps from a post text
// until SetPreviewLength is called.
const DefaultPreviewLength = 15

var previewLength atomic.Int64

func init() {
	previewLength.Store(DefaultPreviewLength)
}

// SetPreviewLength changes the length used by Post.String. Non-positive values
// restore the default.
func SetPreviewLength(n int) {
	if n <= 0 {
		n = DefaultPreviewLength
	}
	previewLength.Store(int64(n))
}

// PreviewLength is the length currently used by Post.String.
func PreviewLength() int {
	return int(previewLength.Load())
}

// Author is the public part of a user shown next to posts and comments.
type Author struct {
	ID       int64  `json:"-"`
	Username string `json:"username"`
}

type Profile struct {
	ID        int64  `json:"-"`
	Username  string `json:"username"`
	PostCount int64  `json:"count"`
	Following bool   `json:"following"`
}

type Group struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func (g *Group) String() string {
	return g.Title
}

type Post struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	PubDate time.Time `json:"pubDate"`
	Author  Author    `json:"author"`
	GroupID *int64    `json:"-"`
	Group   *Group    `json:"group,omitempty"`
	Image   string    `json:"image,omitempty"`
}

// Preview returns the first n characters of the post text.
func (p *Post) Preview(n int) string {
	runes := []rune(p.Text)
	if n < 0 || len(runes) <= n {
		return p.Text
	}
	return string(runes[:n])
}

func (p *Post) String() string {
	return p.Preview(PreviewLength())
}

type Comment struct {
	ID      int64     `json:"id"`
	PostID  *int64    `json:"-"`
	Author  Author    `json:"author"`
	Text    string    `json:"text"`
	Created time.Time `json:"created"`
}

func (c *Comment) String() string {
	return c.Text
}

// Follow means User follows Author.
type Follow struct {
	ID       int64 `json:"-"`
	UserID   int64 `json:"userId"`
	AuthorID int64 `json:"authorId"`
}
