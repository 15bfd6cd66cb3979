// Package e2e drives the application the way a browser would: pages are
// fetched over HTTP with a cookie jar, their markup is parsed, and form
// submissions perform the same API calls the embedded page scripts make.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/html"
	"gorm.io/gorm"

	"github.com/nutriapp/backend/internal/api"
	"github.com/nutriapp/backend/internal/router"
	"github.com/nutriapp/backend/internal/service"
	"github.com/nutriapp/backend/internal/testhelpers"
	"github.com/nutriapp/backend/internal/web"
)

// Harness runs the full application over an in-memory database.
type Harness struct {
	Server *httptest.Server
	DB     *gorm.DB
	Auth   *service.AuthService
	Dishes *service.DishService
}

// NewHarness wires the real router, handlers and services against a fresh
// database and starts an HTTP server for the test's lifetime.
func NewHarness(t *testing.T) *Harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDatabase(t)
	auth := service.NewAuthService(db, service.NewMemorySessionStore(), "test-secret")
	dishes := service.NewDishService(db)

	engine := router.SetupRouter(
		api.NewAuthHandler(auth),
		api.NewDishHandler(dishes, nil, nil),
		web.NewPageHandler(dishes, auth),
		auth,
	)

	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)

	return &Harness{Server: server, DB: db, Auth: auth, Dishes: dishes}
}

// Browser is one user's session: an HTTP client with its own cookie jar.
type Browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

// NewBrowser opens a fresh session against the harness.
func (h *Harness) NewBrowser(t *testing.T) *Browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	return &Browser{t: t, base: h.Server.URL, client: &http.Client{Jar: jar}}
}

// Page is a fetched document: the URL the browser ended up at after
// redirects, and the parsed markup.
type Page struct {
	Path string
	doc  *html.Node
	raw  string
}

// Visit fetches a path, following redirects like a browser.
func (b *Browser) Visit(path string) *Page {
	b.t.Helper()

	resp, err := b.client.Get(b.base + path)
	if err != nil {
		b.t.Fatalf("failed to visit %s: %v", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		b.t.Fatalf("failed to read %s: %v", path, err)
	}

	doc, err := html.Parse(bytes.NewReader(buf.Bytes()))
	if err != nil {
		b.t.Fatalf("failed to parse %s: %v", path, err)
	}

	return &Page{Path: resp.Request.URL.Path, doc: doc, raw: buf.String()}
}

// apiCall performs the JSON request a page script would issue and returns the
// status code and decoded body.
func (b *Browser) apiCall(method, path string, body interface{}) (int, map[string]interface{}) {
	b.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			b.t.Fatalf("failed to marshal body for %s %s: %v", method, path, err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, b.base+path, reader)
	if err != nil {
		b.t.Fatalf("failed to build %s %s: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		b.t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var decoded map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

// Heading returns the text of the first h1 on the page.
func (p *Page) Heading() string {
	return textOf(firstElement(p.doc, "h1"))
}

// Contains reports whether the raw markup contains the given text.
func (p *Page) Contains(text string) bool {
	return strings.Contains(p.raw, text)
}

// TestID returns the first element carrying the given data-testid.
func (p *Page) TestID(id string) *html.Node {
	return firstMatch(p.doc, func(n *html.Node) bool {
		return attr(n, "data-testid") == id
	})
}

// DishCards returns the names of the dishes rendered on the list page, in
// document order.
func (p *Page) DishCards() []string {
	var names []string
	for _, card := range allMatches(p.doc, func(n *html.Node) bool {
		return n.Data == "article" && strings.Contains(attr(n, "class"), "dish-card")
	}) {
		names = append(names, textOf(firstElement(card, "h2")))
	}
	return names
}

// Steps returns the ordered preparation steps on the detail page.
func (p *Page) Steps() []string {
	list := firstElement(p.doc, "ol")
	if list == nil {
		return nil
	}
	var steps []string
	for _, item := range allMatches(list, func(n *html.Node) bool { return n.Data == "li" }) {
		steps = append(steps, textOf(item))
	}
	return steps
}

// LoginPage wraps the login form.
type LoginPage struct {
	b *Browser
	*Page
}

// OpenLogin navigates to the login page and checks the form is present.
func OpenLogin(b *Browser) *LoginPage {
	b.t.Helper()
	page := b.Visit("/login")
	for _, id := range []string{"login-email", "login-password", "login-submit"} {
		if page.TestID(id) == nil {
			b.t.Fatalf("login page is missing %s", id)
		}
	}
	return &LoginPage{b: b, Page: page}
}

// Submit enters the credentials and submits the form. On success the browser
// lands on the dishes page; on failure the error message is returned.
func (p *LoginPage) Submit(email, password string) (*DishesPage, string) {
	p.b.t.Helper()

	status, body := p.b.apiCall(http.MethodPost, "/api/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if status != http.StatusOK {
		msg, _ := body["error"].(string)
		return nil, msg
	}
	return OpenDishes(p.b), ""
}

// RegisterPage wraps the registration form.
type RegisterPage struct {
	b *Browser
	*Page
}

// OpenRegister navigates to the registration page.
func OpenRegister(b *Browser) *RegisterPage {
	b.t.Helper()
	page := b.Visit("/register")
	if page.TestID("register-email") == nil {
		b.t.Fatal("registration page is missing the email field")
	}
	return &RegisterPage{b: b, Page: page}
}

// Submit fills in the account fields and submits. On success the browser is
// sent to the login page; on failure the error message is returned.
func (p *RegisterPage) Submit(firstName, lastName, email, nationality, phone, password string) (*LoginPage, string) {
	p.b.t.Helper()

	status, body := p.b.apiCall(http.MethodPost, "/api/register", map[string]string{
		"firstName":   firstName,
		"lastName":    lastName,
		"email":       email,
		"nationality": nationality,
		"phone":       phone,
		"password":    password,
	})
	if status != http.StatusCreated {
		msg, _ := body["error"].(string)
		return nil, msg
	}
	return OpenLogin(p.b), ""
}

// DishesPage wraps the dish list.
type DishesPage struct {
	b *Browser
	*Page
}

// OpenDishes navigates to the dish list page.
func OpenDishes(b *Browser) *DishesPage {
	b.t.Helper()
	return &DishesPage{b: b, Page: b.Visit("/dishes")}
}

// DishForm captures what a user types into the dish form.
type DishForm struct {
	Name        string
	Description string
	QuickPrep   bool
	PrepTime    int
	CookTime    int
	ImageURL    string
	Steps       []string
	Calories    *int
}

func (f DishForm) payload() map[string]interface{} {
	steps := make([]string, 0, len(f.Steps))
	for _, step := range f.Steps {
		if strings.TrimSpace(step) != "" {
			steps = append(steps, step)
		}
	}
	return map[string]interface{}{
		"name":        f.Name,
		"description": f.Description,
		"quickPrep":   f.QuickPrep,
		"prepTime":    f.PrepTime,
		"cookTime":    f.CookTime,
		"imageUrl":    f.ImageURL,
		"steps":       steps,
		"calories":    f.Calories,
	}
}

// AddDish opens the add form and saves the dish, returning the refreshed
// list page or the form error.
func (p *DishesPage) AddDish(form DishForm) (*DishesPage, string) {
	p.b.t.Helper()

	formPage := p.b.Visit("/dishes/new")
	if got := formPage.Heading(); got != "Agregar Platillo" {
		p.b.t.Fatalf("expected the add form, got heading %q", got)
	}

	status, body := p.b.apiCall(http.MethodPost, "/api/dishes", form.payload())
	if status != http.StatusCreated {
		msg, _ := body["error"].(string)
		return nil, msg
	}
	return OpenDishes(p.b), ""
}

// EditDish opens the edit form for the dish and saves the replacement
// values, returning the refreshed list page or the form error.
func (p *DishesPage) EditDish(id string, form DishForm) (*DishesPage, string) {
	p.b.t.Helper()

	formPage := p.b.Visit("/dishes/" + id)
	if got := formPage.Heading(); got != "Editar Platillo" {
		p.b.t.Fatalf("expected the edit form, got heading %q", got)
	}

	status, body := p.b.apiCall(http.MethodPut, "/api/dishes/"+id, form.payload())
	if status != http.StatusOK {
		msg, _ := body["error"].(string)
		return nil, msg
	}
	return OpenDishes(p.b), ""
}

// DeleteDish presses the delete button on the card, returning the refreshed
// list page and the response status.
func (p *DishesPage) DeleteDish(id string) (*DishesPage, int) {
	p.b.t.Helper()
	status, _ := p.b.apiCall(http.MethodDelete, "/api/dishes/"+id, nil)
	return OpenDishes(p.b), status
}

// ViewDish opens the read-only detail page for the dish.
func (p *DishesPage) ViewDish(id string) *Page {
	p.b.t.Helper()
	return p.b.Visit(fmt.Sprintf("/dishes/%s/view", id))
}

// Logout presses the logout button, returning the page the browser lands on.
func (p *DishesPage) Logout() *Page {
	p.b.t.Helper()

	resp, err := p.b.client.Post(p.b.base+"/api/logout", "application/x-www-form-urlencoded", nil)
	if err != nil {
		p.b.t.Fatalf("logout failed: %v", err)
	}
	_ = resp.Body.Close()

	return p.b.Visit(resp.Request.URL.Path)
}

// markup helpers

func firstElement(n *html.Node, tag string) *html.Node {
	return firstMatch(n, func(node *html.Node) bool { return node.Data == tag })
}

func firstMatch(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := firstMatch(child, match); found != nil {
			return found
		}
	}
	return nil
}

func allMatches(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var found []*html.Node
	if n.Type == html.ElementNode && match(n) {
		found = append(found, n)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		found = append(found, allMatches(child, match)...)
	}
	return found
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
