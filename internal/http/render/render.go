package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"secretboard/internal/domain/models"
	"secretboard/internal/http/httputils"
	"secretboard/internal/services/authz"
	"secretboard/internal/services/tracking"

	"github.com/dustin/go-humanize"
)

const DateLayout = "2006年01月02日 15時04分05秒"

//go:embed templates/posts.html
var templatesFS embed.FS

// Page - данные страницы со списком сообщений
type Page struct {
	Posts        []models.Post
	User         string
	OneTimeToken string
}

type postView struct {
	ID           int64
	Content      string
	PostedBy     string
	TrackingID   string
	CreatedAt    string
	Ago          string
	Deletable    bool
	ShowPostedBy bool
}

type pageView struct {
	User             string
	OneTimeToken     string
	MaxContentLength int
	Posts            []postView
}

type Renderer struct {
	tpl *template.Template
	loc *time.Location
	now func() time.Time
}

// NewRenderer разбирает встроенный шаблон; loc == nil означает UTC
func NewRenderer(loc *time.Location) (*Renderer, error) {
	tpl, err := template.ParseFS(templatesFS, "templates/posts.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{tpl: tpl, loc: loc, now: time.Now}, nil
}

func (r *Renderer) view(p Page) pageView {
	now := r.now()
	v := pageView{
		User:             p.User,
		OneTimeToken:     p.OneTimeToken,
		MaxContentLength: models.MaxContentLength,
		Posts:            make([]postView, 0, len(p.Posts)),
	}

	for _, post := range p.Posts {
		v.Posts = append(v.Posts, postView{
			ID:         post.ID,
			Content:    post.Content,
			PostedBy:   post.PostedBy,
			TrackingID: tracking.OriginalID(post.TrackingCookie),
			CreatedAt:  post.CreatedAt.In(r.loc).Format(DateLayout),
			Ago:        humanize.RelTime(post.CreatedAt, now, "ago", "from now"),
			Deletable:  authz.CanDelete(p.User, post.PostedBy),
			// имя автора видно только администратору
			ShowPostedBy: p.User == authz.AdminUser,
		})
	}
	return v
}

// Render исполняет шаблон в буфер и только потом пишет ответ
func (r *Renderer) Render(w http.ResponseWriter, p Page) error {
	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, r.view(p)); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}

	w.Header().Set(httputils.HeaderContentType, httputils.MIMETextHTML+"; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := buf.WriteTo(w)
	return err
}
