package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go-watchlist/pkg/client"
)

func (a *App) register(ctx context.Context) error {
	name, err := promptLine(a.reader, a.out, "Name")
	if err != nil {
		return err
	}
	email, err := promptLine(a.reader, a.out, "Email")
	if err != nil {
		return err
	}
	password, err := promptPassword(a.reader, a.out, "Password")
	if err != nil {
		return err
	}

	result, err := a.api.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered and signed in as %s\n", result.User.Email)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := a.newFlagSet("login")
	remember := fs.Bool("remember", false, "keep the session after this terminal closes")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	email, err := promptLine(a.reader, a.out, "Email")
	if err != nil {
		return err
	}
	password, err := promptPassword(a.reader, a.out, "Password")
	if err != nil {
		return err
	}

	result, err := a.api.Login(ctx, email, password, *remember)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s\n", result.User.Email)
	if !*remember {
		fmt.Fprintln(a.out, "Session not saved; use -remember to stay signed in.")
	}
	return nil
}

func (a *App) logout() error {
	if err := a.api.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *App) whoami(ctx context.Context) error {
	user, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s>\n", user.Name, user.Email)
	if user.Avatar != "" {
		fmt.Fprintf(a.out, "avatar: %s\n", user.Avatar)
	}
	return nil
}

func (a *App) forgotPassword(ctx context.Context) error {
	email, err := promptLine(a.reader, a.out, "Email")
	if err != nil {
		return err
	}
	msg, err := a.api.ForgotPassword(ctx, email)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func (a *App) resetPassword(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: reset-password <token>", errUsage)
	}
	password, err := promptPassword(a.reader, a.out, "New password")
	if err != nil {
		return err
	}
	msg, err := a.api.ResetPassword(ctx, args[0], password)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func (a *App) avatar(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: avatar <image file>", errUsage)
	}
	file, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer file.Close()

	user, err := a.api.UploadAvatar(ctx, filepath.Base(args[0]), file)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Avatar updated: %s\n", user.Avatar)
	return nil
}

func (a *App) search(ctx context.Context, args []string) error {
	fs := a.newFlagSet("search")
	page := fs.Int("page", 1, "result page")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	results, err := a.api.SearchMovies(ctx, joinArgs(fs), *page)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(a.out, "No results")
		return nil
	}

	tw := a.table()
	fmt.Fprintln(tw, "TMDB ID\tTYPE\tTITLE\tYEAR\tRATING")
	for _, r := range results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.1f\n", r.TMDBID, r.MediaType, r.Title, yearRange(r.Year, r.EndYear), r.VoteAverage)
	}
	return tw.Flush()
}

func (a *App) add(ctx context.Context, args []string) error {
	fs := a.newFlagSet("add")
	id := fs.Int64("id", 0, "TMDB id of the result to add (default: first result)")
	status := fs.String("status", "", "watching, completed or plan-to-watch")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	query := joinArgs(fs)
	if query == "" {
		return fmt.Errorf("%w: add [-id N] <query>", errUsage)
	}

	results, err := a.api.SearchMovies(ctx, query, 1)
	if err != nil {
		return err
	}

	var picked *client.SearchResult
	for i := range results {
		if *id == 0 || results[i].TMDBID == *id {
			picked = &results[i]
			break
		}
	}
	if picked == nil {
		return fmt.Errorf("no search result for %q matches id %d", query, *id)
	}

	entry := client.EntryFromSearch(*picked)
	entry.Status = *status
	added, err := a.api.AddToWatchlist(ctx, entry)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %s (%s) as %s [%s]\n", added.Title, added.MediaType, added.Status, added.ID)
	return nil
}

func (a *App) list(ctx context.Context, args []string) error {
	fs := a.newFlagSet("list")
	opts := client.ListOptions{}
	genres := fs.String("genres", "", "comma separated genres, any match")
	fs.StringVar(&opts.Status, "status", "", "watching, completed or plan-to-watch")
	fs.StringVar(&opts.MediaType, "type", "", "movie or tv")
	fs.StringVar(&opts.SortBy, "sort", "", "title, rating, year or created")
	fs.StringVar(&opts.SortOrder, "order", "", "asc or desc")
	fs.IntVar(&opts.Page, "page", 1, "page")
	fs.IntVar(&opts.Limit, "limit", 0, "page size")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *genres != "" {
		opts.Genres = strings.Split(*genres, ",")
	}

	entries, meta, err := a.api.ListWatchlist(ctx, opts)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "Your watchlist is empty")
		return nil
	}

	tw := a.table()
	fmt.Fprintln(tw, "ID\tTYPE\tTITLE\tYEAR\tSTATUS\tACTIVE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\n", e.ID, e.MediaType, e.Title, yearRange(e.Year, e.EndYear), e.Status, e.IsActive)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if meta != nil {
		fmt.Fprintf(a.out, "page %d of %d (%d entries)\n", meta.Page, max(meta.TotalPages, 1), meta.Total)
	}
	return nil
}

func (a *App) update(ctx context.Context, args []string) error {
	fs := a.newFlagSet("update")
	status := fs.String("status", "", "watching, completed or plan-to-watch")
	notes := fs.String("notes", "", "free text notes")
	active := fs.String("active", "", "true or false")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: update [flags] <entry id>", errUsage)
	}

	var upd client.EntryUpdate
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "status":
			upd.Status = status
		case "notes":
			upd.Notes = notes
		}
	})
	if *active != "" {
		value, err := strconv.ParseBool(*active)
		if err != nil {
			return fmt.Errorf("%w: -active must be true or false", errUsage)
		}
		upd.IsActive = &value
	}
	if upd.Status == nil && upd.Notes == nil && upd.IsActive == nil {
		return fmt.Errorf("%w: nothing to update", errUsage)
	}

	entry, err := a.api.UpdateWatchlistEntry(ctx, fs.Arg(0), upd)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated %s: %s\n", entry.Title, entry.Status)
	return nil
}

func (a *App) remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: remove <entry id>", errUsage)
	}
	msg, err := a.api.RemoveFromWatchlist(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func yearRange(start, end string) string {
	if end != "" && end != start {
		return start + "-" + end
	}
	return start
}
