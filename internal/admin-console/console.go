package adminconsole

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"shop-admin/internal/admin-service/core/domain/dto"
	"shop-admin/internal/admin-service/core/myerrors"
	"shop-admin/internal/admin-service/core/service"
)

type State int

const (
	Viewing State = iota
	Searching
	EditingPoints
	Saving
)

func (s State) String() string {
	switch s {
	case Viewing:
		return "viewing"
	case Searching:
		return "searching"
	case EditingPoints:
		return "editing_points"
	case Saving:
		return "saving"
	default:
		return "unknown"
	}
}

var (
	ErrNotEditing = errors.New("no edit in progress")
	ErrEditing    = errors.New("finish or cancel the current edit first")
)

type NoticeKind int

const (
	NoticeSuccess NoticeKind = iota
	NoticeError
)

type Notice struct {
	Kind NoticeKind
	Text string
	Err  error
}

// UsersAPI is what the console needs from the admin service.
type UsersAPI interface {
	GetUsers(ctx context.Context, page int, q string) (dto.UsersPage, error)
	SaveUserPoints(ctx context.Context, userId string, points int64) error
}

// Console drives the user management screen: a paged, searchable listing
// with a points editor on top. One request is in flight at a time.
type Console struct {
	mu       sync.Mutex
	api      UsersAPI
	state    State
	inFlight bool

	page   int
	query  string
	result dto.UsersPage

	editing dto.User
	draft   string
	notice  *Notice
}

func NewConsole(api UsersAPI) *Console {
	return &Console{
		api:    api,
		state:  Viewing,
		page:   1,
		result: dto.UsersPage{Items: []dto.User{}, Page: 1, PageSize: dto.DefaultPageSize},
	}
}

// Load refetches the current page and filter.
func (c *Console) Load(ctx context.Context) error {
	c.mu.Lock()
	page, query := c.page, c.query
	c.mu.Unlock()
	return c.fetch(ctx, Viewing, page, query)
}

// Search resets to the first page; an empty term clears the filter.
func (c *Console) Search(ctx context.Context, term string) error {
	return c.fetch(ctx, Searching, 1, strings.TrimSpace(term))
}

func (c *Console) GoToPage(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	c.mu.Lock()
	query := c.query
	c.mu.Unlock()
	return c.fetch(ctx, Viewing, page, query)
}

func (c *Console) fetch(ctx context.Context, during State, page int, query string) error {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return myerrors.ErrBusy
	}
	if c.state != Viewing {
		c.mu.Unlock()
		return ErrEditing
	}
	c.inFlight = true
	c.state = during
	c.mu.Unlock()

	result, err := c.api.GetUsers(ctx, page, query)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	c.state = Viewing
	if err != nil {
		c.notice = &Notice{Kind: NoticeError, Text: "Failed to load users", Err: err}
		return err
	}
	c.page, c.query, c.result = page, query, result
	return nil
}

// OpenEdit starts editing a user from the current listing.
func (c *Console) OpenEdit(userId string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight {
		return myerrors.ErrBusy
	}
	if c.state != Viewing {
		return ErrEditing
	}
	for _, u := range c.result.Items {
		if u.UserId == userId {
			c.editing = u
			c.draft = strconv.FormatInt(u.Points, 10)
			c.state = EditingPoints
			return nil
		}
	}
	return fmt.Errorf("%w: %s is not on this page", myerrors.ErrUserNotFound, userId)
}

func (c *Console) SetDraft(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != EditingPoints {
		return ErrNotEditing
	}
	c.draft = text
	return nil
}

// Cancel closes the editor without side effects.
func (c *Console) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Saving:
		return myerrors.ErrBusy
	case EditingPoints:
		c.state = Viewing
		c.editing = dto.User{}
		c.draft = ""
	}
	return nil
}

// Save sends the draft. An unparsable draft never reaches the API. On
// failure the editor stays open with the draft intact.
func (c *Console) Save(ctx context.Context) error {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return myerrors.ErrBusy
	}
	if c.state != EditingPoints {
		c.mu.Unlock()
		return ErrNotEditing
	}
	points, err := service.ParsePoints(c.draft)
	if err != nil {
		c.notice = &Notice{Kind: NoticeError, Text: "Points must be a whole number", Err: err}
		c.mu.Unlock()
		return err
	}
	userId := c.editing.UserId
	page, query := c.page, c.query
	c.inFlight = true
	c.state = Saving
	c.mu.Unlock()

	if err := c.api.SaveUserPoints(ctx, userId, points); err != nil {
		c.mu.Lock()
		c.inFlight = false
		c.state = EditingPoints
		c.notice = &Notice{Kind: NoticeError, Text: "Failed to update points", Err: err}
		c.mu.Unlock()
		return err
	}

	result, reloadErr := c.api.GetUsers(ctx, page, query)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	c.state = Viewing
	c.editing = dto.User{}
	c.draft = ""
	if reloadErr != nil {
		c.notice = &Notice{Kind: NoticeError, Text: "Points updated, but the list could not be refreshed", Err: reloadErr}
		return nil
	}
	c.result = result
	c.notice = &Notice{Kind: NoticeSuccess, Text: "Points updated"}
	return nil
}

func (c *Console) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Console) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

func (c *Console) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

func (c *Console) Result() dto.UsersPage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Editing returns the user under edit and the current draft.
func (c *Console) Editing() (dto.User, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != EditingPoints && c.state != Saving {
		return dto.User{}, "", false
	}
	return c.editing, c.draft, true
}

// TakeNotice returns the pending notice once.
func (c *Console) TakeNotice() *Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.notice
	c.notice = nil
	return n
}

func (c *Console) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result.TotalPages()
}

func (c *Console) HasPrev() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page > 1
}

func (c *Console) HasNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page < c.result.TotalPages()
}
