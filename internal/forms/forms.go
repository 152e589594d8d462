package forms

import (
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/yatube/internal/media"
	"github.com/siahsang/yatube/internal/validator"
	"github.com/siahsang/yatube/models"
)

const (
	RequiredMessage      = "This field is required."
	InvalidChoiceMessage = "Select a valid choice. That choice is not one of the available choices."

	// multipartMemory is how much of a multipart body is kept in memory before
	// spilling to temporary files.
	multipartMemory = 1 << 20
)

// parse reads the request body, multipart or urlencoded.
func parse(r *http.Request) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return xerrors.Newf("failed to parse multipart form: %w", err)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return xerrors.Newf("failed to parse form: %w", err)
	}
	return nil
}

// PostForm binds the text, group and image fields of a post.
type PostForm struct {
	Text  string
	Group string
	Image *media.Upload

	*validator.Validator
}

// NewPostForm returns a form filled with the current values of post, or a blank
// form when post is nil.
func NewPostForm(post *models.Post) *PostForm {
	form := &PostForm{Validator: validator.New()}
	if post != nil {
		form.Text = post.Text
		if post.GroupID != nil {
			form.Group = strconv.FormatInt(*post.GroupID, 10)
		}
	}
	return form
}

// ParsePostForm binds a submitted post form. An uploaded image is validated here,
// so a bad image is reported as a field error rather than a failure.
func ParsePostForm(r *http.Request, maxUploadBytes int64) (*PostForm, error) {
	if err := parse(r); err != nil {
		return nil, err
	}

	form := &PostForm{
		Text:      r.PostFormValue("text"),
		Group:     strings.TrimSpace(r.PostFormValue("group")),
		Validator: validator.New(),
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		return nil, xerrors.New(err)
	default:
		defer file.Close()
		upload, err := media.ValidateImage(header.Filename, file, maxUploadBytes)
		switch {
		case errors.Is(err, media.ErrInvalidImageType):
			form.AddError("image", media.ErrInvalidImageType.Error())
		case errors.Is(err, media.ErrImageTooLarge):
			form.AddError("image", media.ErrImageTooLarge.Error())
		case err != nil:
			return nil, err
		default:
			form.Image = upload
		}
	}

	return form, nil
}

// Validate checks the fields. groups are the allowed choices for the group field.
func (f *PostForm) Validate(groups []*models.Group) {
	f.CheckNotBlank(f.Text, "text", RequiredMessage)

	if f.Group == "" {
		return
	}
	id, err := strconv.ParseInt(f.Group, 10, 64)
	if err != nil || !hasGroup(groups, id) {
		f.AddError("group", InvalidChoiceMessage)
	}
}

// GroupID is the selected group, nil when none is.
func (f *PostForm) GroupID() *int64 {
	id, err := strconv.ParseInt(f.Group, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

func hasGroup(groups []*models.Group, id int64) bool {
	for _, group := range groups {
		if group.ID == id {
			return true
		}
	}
	return false
}

type CommentForm struct {
	Text string

	*validator.Validator
}

func NewCommentForm() *CommentForm {
	return &CommentForm{Validator: validator.New()}
}

func ParseCommentForm(r *http.Request) (*CommentForm, error) {
	if err := parse(r); err != nil {
		return nil, err
	}
	form := NewCommentForm()
	form.Text = r.PostFormValue("text")
	form.CheckNotBlank(form.Text, "text", RequiredMessage)
	return form, nil
}

type SignupForm struct {
	Username string
	Email    string
	Password string

	*validator.Validator
}

func NewSignupForm() *SignupForm {
	return &SignupForm{Validator: validator.New()}
}

func ParseSignupForm(r *http.Request) (*SignupForm, error) {
	if err := parse(r); err != nil {
		return nil, err
	}

	form := NewSignupForm()
	form.Username = strings.TrimSpace(r.PostFormValue("username"))
	form.Email = strings.TrimSpace(r.PostFormValue("email"))
	form.Password = r.PostFormValue("password")

	form.CheckNotBlank(form.Username, "username", RequiredMessage)
	form.CheckMaxChars(form.Username, 150, "username", "Ensure this value has at most 150 characters.")
	form.Check(form.IsMatch(form.Username, validator.UsernameRX), "username",
		"Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")

	form.CheckNotBlank(form.Email, "email", RequiredMessage)
	form.CheckEmail(form.Email, "Enter a valid email address.")

	form.CheckNotBlank(form.Password, "password", RequiredMessage)
	form.Check(len(form.Password) >= 8, "password", "This password is too short. It must contain at least 8 characters.")
	form.Check(len(form.Password) <= 72, "password", "This password is too long.")
	return form, nil
}

type LoginForm struct {
	Username string
	Password string
	Next     string

	*validator.Validator
}

func NewLoginForm(next string) *LoginForm {
	return &LoginForm{Next: SafeNext(next), Validator: validator.New()}
}

func ParseLoginForm(r *http.Request) (*LoginForm, error) {
	if err := parse(r); err != nil {
		return nil, err
	}

	form := NewLoginForm(r.PostFormValue("next"))
	form.Username = strings.TrimSpace(r.PostFormValue("username"))
	form.Password = r.PostFormValue("password")

	form.CheckNotBlank(form.Username, "username", RequiredMessage)
	form.CheckNotBlank(form.Password, "password", RequiredMessage)
	return form, nil
}

// SafeNext keeps only local redirect targets.
func SafeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}
