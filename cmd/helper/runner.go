package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	adminconsole "shop-admin/internal/admin-console"
	"shop-admin/internal/admin-service/core/domain/dto"
)

const helpText = `commands:
  list                 reload the current page
  search <term>        filter by username or id, empty term clears
  page <n>             jump to page n
  next | prev          move one page
  edit <user_id>       open the points editor
  points <value>       set the draft value
  save | cancel        finish the edit
  nav                  show the admin sidebar
  quit`

var errQuit = errors.New("quit")

// SidebarSource serves the admin navigation for the signed-in caller.
type SidebarSource interface {
	Sidebar(ctx context.Context) (dto.Sidebar, error)
}

type Runner struct {
	console *adminconsole.Console
	nav     SidebarSource
	out     io.Writer
	logger  *Logger
}

func NewRunner(console *adminconsole.Console, nav SidebarSource, out io.Writer) *Runner {
	return &Runner{
		console: console,
		nav:     nav,
		out:     out,
		logger:  &Logger{out: out},
	}
}

// Exec runs one command line. It returns errQuit when the session should end.
func (r *Runner) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	ctx, cancel := context.WithTimeout(ctx, CommandTimeout)
	defer cancel()

	var err error
	switch cmd {
	case "list":
		err = r.console.Load(ctx)
	case "search":
		err = r.console.Search(ctx, strings.Join(args, " "))
	case "page":
		if len(args) != 1 {
			return fmt.Errorf("usage: page <n>")
		}
		n, convErr := strconv.Atoi(args[0])
		if convErr != nil {
			return fmt.Errorf("page must be a number: %q", args[0])
		}
		err = r.console.GoToPage(ctx, n)
	case "next":
		if !r.console.HasNext() {
			r.logger.Warn("already on the last page")
			return nil
		}
		err = r.console.GoToPage(ctx, r.console.Page()+1)
	case "prev":
		if !r.console.HasPrev() {
			r.logger.Warn("already on the first page")
			return nil
		}
		err = r.console.GoToPage(ctx, r.console.Page()-1)
	case "edit":
		if len(args) != 1 {
			return fmt.Errorf("usage: edit <user_id>")
		}
		err = r.console.OpenEdit(args[0])
	case "points":
		err = r.console.SetDraft(strings.Join(args, " "))
	case "save":
		err = r.console.Save(ctx)
	case "cancel":
		err = r.console.Cancel()
	case "nav":
		return r.renderSidebar(ctx)
	case "help":
		fmt.Fprintln(r.out, helpText)
		return nil
	case "quit", "exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}

	r.logger.Notice(r.console.TakeNotice())
	if err != nil {
		return err
	}
	r.Render()
	return nil
}

// Render prints the listing, or the editor while one is open.
func (r *Runner) Render() {
	if user, draft, ok := r.console.Editing(); ok {
		fmt.Fprintf(r.out, "editing %s (%s): points %d -> %s\n", user.DisplayName(), user.UserId, user.Points, draft)
		return
	}

	result := r.console.Result()
	tw := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USER ID\tUSERNAME\tPOINTS\tORDERS\tCREATED")
	for _, u := range result.Items {
		username := "-"
		if u.Username != nil {
			username = *u.Username
		}
		created := "-"
		if u.CreatedAt != nil {
			created = u.CreatedAt.Format(time.DateOnly)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", u.UserId, username, u.Points, u.OrderCount, created)
	}
	_ = tw.Flush()

	filter := ""
	if q := r.console.Query(); q != "" {
		filter = fmt.Sprintf(" matching %q", q)
	}
	fmt.Fprintf(r.out, Gray+"page %d of %d, %d users%s"+Reset+"\n", r.console.Page(), r.console.TotalPages(), result.Total, filter)
}

func (r *Runner) renderSidebar(ctx context.Context) error {
	sidebar, err := r.nav.Sidebar(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%s, logged in as %s\n", sidebar.TitleKey, sidebar.LoggedInAs)
	for _, item := range sidebar.Items {
		fmt.Fprintf(r.out, "  %-14s %s\n", item.LabelKey, item.Href)
	}
	fmt.Fprintf(r.out, Gray+"logout: %s"+Reset+"\n", sidebar.Logout.CallbackURL)
	return nil
}
