package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/yatube/internal/auth"
	"github.com/siahsang/yatube/internal/cache"
	"github.com/siahsang/yatube/internal/config"
	"github.com/siahsang/yatube/internal/core"
	"github.com/siahsang/yatube/internal/media"
	"github.com/siahsang/yatube/internal/pagination"
	"github.com/siahsang/yatube/internal/render"
	"github.com/siahsang/yatube/models"
	"github.com/stretchr/testify/require"
)

// fakeStore keeps everything in memory. Posts are stored in creation order and
// listed newest first, like the SQL queries do.
type fakeStore struct {
	mu       sync.Mutex
	nextID   int64
	clock    time.Time
	users    map[string]*auth.User
	groups   []*models.Group
	posts    []*models.Post
	comments []*models.Comment
	follows  map[[2]int64]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clock:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		users:   make(map[string]*auth.User),
		follows: make(map[[2]int64]bool),
	}
}

func (s *fakeStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *fakeStore) CreateNewUser(_ context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return xerrors.New(core.ErrDuplicateEmail)
		}
	}
	if _, ok := s.users[user.Username]; ok {
		return xerrors.New(core.ErrDuplicateUsername)
	}
	user.ID = s.id()
	user.DateJoined = s.tick()
	s.users[user.Username] = user
	return nil
}

func (s *fakeStore) GetUserByUsername(_ context.Context, username string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[username]
	if !ok {
		return nil, xerrors.New(core.NoRecordFound)
	}
	return user, nil
}

func (s *fakeStore) addGroup(title, slug string) *models.Group {
	s.mu.Lock()
	defer s.mu.Unlock()

	group := &models.Group{ID: s.id(), Title: title, Slug: slug, Description: "About " + title}
	s.groups = append(s.groups, group)
	return group
}

func (s *fakeStore) findGroup(id *int64) *models.Group {
	if id == nil {
		return nil
	}
	for _, group := range s.groups {
		if group.ID == *id {
			return group
		}
	}
	return nil
}

func (s *fakeStore) GetGroupBySlug(_ context.Context, slug string) (*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, group := range s.groups {
		if group.Slug == slug {
			return group, nil
		}
	}
	return nil, xerrors.New(core.NoRecordFound)
}

func (s *fakeStore) ListGroups(context.Context) ([]*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.Group{}, s.groups...), nil
}

func (s *fakeStore) CreatePost(_ context.Context, post *models.Post) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := *post
	created.ID = s.id()
	created.PubDate = s.tick()
	created.Group = s.findGroup(post.GroupID)
	s.posts = append(s.posts, &created)
	copied := created
	return &copied, nil
}

func (s *fakeStore) post(id int64) *models.Post {
	for _, post := range s.posts {
		if post.ID == id {
			return post
		}
	}
	return nil
}

func (s *fakeStore) GetPostByID(_ context.Context, id int64) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post := s.post(id)
	if post == nil {
		return nil, xerrors.New(core.NoRecordFound)
	}
	copied := *post
	return &copied, nil
}

func (s *fakeStore) UpdatePost(_ context.Context, post *models.Post, editorID int64) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.post(post.ID)
	if existing == nil {
		return nil, xerrors.New(core.NoRecordFound)
	}
	if existing.Author.ID != editorID {
		return nil, xerrors.New(core.ErrNotPostAuthor)
	}
	existing.Text = post.Text
	existing.GroupID = post.GroupID
	existing.Group = s.findGroup(post.GroupID)
	existing.Image = post.Image
	copied := *existing
	return &copied, nil
}

func (s *fakeStore) CountPostsByAuthor(_ context.Context, authorID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, post := range s.posts {
		if post.Author.ID == authorID {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) postCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posts)
}

func (s *fakeStore) source(keep func(*models.Post) bool) pagination.Source[*models.Post] {
	s.mu.Lock()
	defer s.mu.Unlock()

	var posts []*models.Post
	for i := len(s.posts) - 1; i >= 0; i-- {
		if keep(s.posts[i]) {
			copied := *s.posts[i]
			posts = append(posts, &copied)
		}
	}
	return pagination.FromSlice(posts)
}

func (s *fakeStore) AllPosts() pagination.Source[*models.Post] {
	return s.source(func(*models.Post) bool { return true })
}

func (s *fakeStore) GroupPosts(groupID int64) pagination.Source[*models.Post] {
	return s.source(func(p *models.Post) bool { return p.GroupID != nil && *p.GroupID == groupID })
}

func (s *fakeStore) AuthorPosts(authorID int64) pagination.Source[*models.Post] {
	return s.source(func(p *models.Post) bool { return p.Author.ID == authorID })
}

// FeedPosts reads the follow edges at call time, inside source's lock.
func (s *fakeStore) FeedPosts(userID int64) pagination.Source[*models.Post] {
	return s.source(func(p *models.Post) bool { return s.follows[[2]int64{userID, p.Author.ID}] })
}

func (s *fakeStore) CreateComment(_ context.Context, comment *models.Comment) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := *comment
	created.ID = s.id()
	created.Created = s.tick()
	s.comments = append(s.comments, &created)
	return &created, nil
}

func (s *fakeStore) GetCommentsByPost(_ context.Context, postID int64) ([]*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comments := []*models.Comment{}
	for i := len(s.comments) - 1; i >= 0; i-- {
		if c := s.comments[i]; c.PostID != nil && *c.PostID == postID {
			comments = append(comments, c)
		}
	}
	return comments, nil
}

func (s *fakeStore) GetProfile(ctx context.Context, username string, viewerID int64) (*models.Profile, error) {
	user, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	count, _ := s.CountPostsByAuthor(ctx, user.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	return &models.Profile{
		ID:        user.ID,
		Username:  user.Username,
		PostCount: count,
		Following: s.follows[[2]int64{viewerID, user.ID}],
	}, nil
}

func (s *fakeStore) FollowUser(ctx context.Context, userID int64, authorUsername string) (*models.Profile, error) {
	author, err := s.GetUserByUsername(ctx, authorUsername)
	if err != nil {
		return nil, err
	}
	if author.ID != userID {
		s.mu.Lock()
		s.follows[[2]int64{userID, author.ID}] = true
		s.mu.Unlock()
	}
	return s.GetProfile(ctx, authorUsername, userID)
}

func (s *fakeStore) UnfollowUser(ctx context.Context, userID int64, authorUsername string) (*models.Profile, error) {
	author, err := s.GetUserByUsername(ctx, authorUsername)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	key := [2]int64{userID, author.ID}
	followed := s.follows[key]
	delete(s.follows, key)
	s.mu.Unlock()

	if !followed {
		return nil, xerrors.New(core.UserIsNotFollowed)
	}
	return s.GetProfile(ctx, authorUsername, userID)
}

func (s *fakeStore) followCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.follows)
}

type renderCall struct {
	Name   string
	Status int
	Data   render.Data
}

// recordingRenderer remembers which template was used with which context and
// writes a small body listing the posts of the page.
type recordingRenderer struct {
	mu    sync.Mutex
	calls []renderCall
}

func (rr *recordingRenderer) Render(w http.ResponseWriter, status int, name string, data render.Data) error {
	rr.mu.Lock()
	rr.calls = append(rr.calls, renderCall{Name: name, Status: status, Data: data})
	rr.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, "<template %s>", name)
	if page, ok := data["page_obj"].(*pagination.Page[*models.Post]); ok {
		for _, post := range page.Items {
			fmt.Fprintf(w, "<post %d %q>", post.ID, post.Text)
		}
	}
	return nil
}

func (rr *recordingRenderer) last(t *testing.T) renderCall {
	t.Helper()
	rr.mu.Lock()
	defer rr.mu.Unlock()
	require.NotEmpty(t, rr.calls, "nothing was rendered")
	return rr.calls[len(rr.calls)-1]
}

func (rr *recordingRenderer) count() int {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	return len(rr.calls)
}

type testServer struct {
	app      *application
	store    *fakeStore
	renderer *recordingRenderer
	media    *media.FakeStorage
	handler  http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := config.Default()
	cfg.Auth.JWTSecret = "test-secret"

	ts := &testServer{
		store:    newFakeStore(),
		renderer: &recordingRenderer{},
		media:    media.NewFakeStorage(),
	}
	ts.app = &application{
		config:   cfg,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		store:    ts.store,
		auth:     auth.New(cfg.Auth.JWTSecret, time.Hour, false),
		renderer: ts.renderer,
		media:    ts.media,
		cache:    cache.NewMemoryStore(),
	}
	ts.handler = ts.app.routes()
	t.Cleanup(ts.app.wg.Wait)
	return ts
}

func (ts *testServer) user(t *testing.T, username string) *auth.User {
	t.Helper()
	user := &auth.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, user.SetPassword("pa55word!"))
	require.NoError(t, ts.store.CreateNewUser(context.Background(), user))
	return user
}

func (ts *testServer) post(t *testing.T, author *auth.User, text string, group *models.Group) *models.Post {
	t.Helper()
	post := &models.Post{Text: text, Author: models.Author{ID: author.ID, Username: author.Username}}
	if group != nil {
		post.GroupID = &group.ID
	}
	created, err := ts.store.CreatePost(context.Background(), post)
	require.NoError(t, err)
	return created
}

// do serves r, signed in as user when user is not nil.
func (ts *testServer) do(t *testing.T, r *http.Request, user *auth.User) *httptest.ResponseRecorder {
	t.Helper()
	if user != nil {
		token, err := ts.app.auth.GenerateToken(user)
		require.NoError(t, err)
		r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, r)
	return w
}

func (ts *testServer) get(t *testing.T, target string, user *auth.User) *httptest.ResponseRecorder {
	t.Helper()
	return ts.do(t, httptest.NewRequest(http.MethodGet, target, nil), user)
}

func (ts *testServer) postForm(t *testing.T, target string, values url.Values, user *auth.User) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return ts.do(t, r, user)
}
