package ui

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"dimfdesk/models"
	"dimfdesk/services"
	"dimfdesk/session"
)

// Shell is the interactive terminal frontend. It owns stdin/stdout; every
// remote result is delivered on the event loop and handed back to the shell
// goroutine through await.
type Shell struct {
	loop      *Loop
	sess      *session.Session
	users     *services.Users
	posts     *services.Posts
	platforms *services.Platforms
	images    *services.Images
	saver     *services.Saver
	export    *services.Export

	exportDir string
	in        *bufio.Scanner
	draft     *models.Draft
}

// NewShell wires the frontend to the service layer.
func NewShell(loop *Loop, sess *session.Session, users *services.Users, posts *services.Posts,
	platforms *services.Platforms, images *services.Images, saver *services.Saver,
	export *services.Export, exportDir string) *Shell {
	return &Shell{
		loop:      loop,
		sess:      sess,
		users:     users,
		posts:     posts,
		platforms: platforms,
		images:    images,
		saver:     saver,
		export:    export,
		exportDir: exportDir,
		in:        bufio.NewScanner(os.Stdin),
		draft:     models.NewDraft(),
	}
}

// await issues an operation and blocks the shell goroutine until its result
// arrives on the event loop.
func await[T any](start func(done func(T))) T {
	ch := make(chan T, 1)
	start(func(v T) { ch <- v })
	return <-ch
}

// Login runs the authentication gate. Returns false when the user cancels
// (empty username or EOF); the caller exits the process with code 0 then.
func (s *Shell) Login() bool {
	for {
		fmt.Println("Log in (empty username to quit, 'register' to create an account)")
		username, ok := s.prompt("Username: ")
		if !ok || username == "" {
			return false
		}
		if username == "register" {
			s.register()
			if s.users.IsLoggedIn() {
				s.greet()
				return true
			}
			continue
		}
		password, err := readPassword("Password: ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not read password: %v\n", err)
			return false
		}

		out := await(func(done func(services.AuthOutcome)) {
			s.users.Login(context.Background(), username, password, done)
		})
		if !out.Success {
			fmt.Println(out.Message)
			continue
		}
		s.greet()
		return true
	}
}

func (s *Shell) register() {
	username, ok := s.prompt("New username: ")
	if !ok || username == "" {
		return
	}
	email, _ := s.prompt("Email: ")
	password, err := readPassword("Password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not read password: %v\n", err)
		return
	}
	out := await(func(done func(services.AuthOutcome)) {
		s.users.Register(context.Background(), username, email, password, done)
	})
	fmt.Println(out.Message)
}

func (s *Shell) greet() {
	fmt.Printf("Logged in as %s\n", s.sess.Username())
	if exp, ok := s.sess.ExpiresAt(); ok && time.Until(exp) < time.Hour {
		fmt.Printf("Note: session expires at %s\n", exp.Format(time.RFC3339))
	}
}

// Run is the command loop. It returns when the user exits or stdin closes.
func (s *Shell) Run() {
	fmt.Println("Type 'help' for commands.")
	for {
		line, ok := s.prompt("> ")
		if !ok {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]
		switch cmd {
		case "exit", "quit":
			return
		case "help":
			s.printHelp()
		case "list":
			s.listPosts()
		case "open":
			s.openPost(strings.Join(args, " "))
		case "new":
			s.draft = models.NewDraft()
			fmt.Println("Started a new draft.")
		case "show":
			s.showDraft()
		case "name":
			s.draft.Name = strings.Join(args, " ")
		case "date":
			s.setDate(args)
		case "content":
			s.readContent()
		case "generate":
			s.generate()
		case "platforms":
			s.listPlatforms()
		case "select":
			s.selectPlatforms(args)
		case "images":
			s.listImages()
		case "image":
			s.imageCommand(args)
		case "save":
			s.save()
		case "delete":
			s.deletePost()
		case "export":
			s.exportExcel(args)
		case "whoami":
			fmt.Printf("%s (user %d)\n", s.sess.Username(), s.sess.UserID())
		case "logout":
			s.users.Logout()
			if !s.Login() {
				return
			}
		default:
			fmt.Printf("unknown command %q, try 'help'\n", cmd)
		}
	}
}

func (s *Shell) printHelp() {
	fmt.Print(`Posts:      list, open <name>, new, show, delete
Fields:     name <text>, date <yyyy-mm-dd>, content, generate
Platforms:  platforms, select <id> [id...]
Images:     images, image add <url> [source], image rm <n>, image search <query>
Actions:    save, export [path], whoami, logout, exit
`)
}

func (s *Shell) listPosts() {
	type result struct {
		posts []models.Post
		err   error
	}
	r := await(func(done func(result)) {
		s.posts.List(context.Background(), func(posts []models.Post, err error) {
			done(result{posts, err})
		})
	})
	if r.err != nil {
		fmt.Println("Failed to load posts:", r.err)
		return
	}
	for _, p := range r.posts {
		fmt.Printf("  [%d] %s (%s)\n", p.PostID, p.Name, p.DateOfDeath)
	}
	if len(r.posts) == 0 {
		fmt.Println("  (no posts)")
	}
}

func (s *Shell) openPost(name string) {
	if name == "" {
		fmt.Println("usage: open <name>")
		return
	}
	type result struct {
		draft *models.Draft
		err   error
	}
	r := await(func(done func(result)) {
		s.posts.LoadByName(context.Background(), name, func(d *models.Draft, err error) {
			done(result{d, err})
		})
	})
	if r.err != nil {
		fmt.Println("Failed to load post:", r.err)
		return
	}
	s.draft = r.draft
	s.showDraft()
}

func (s *Shell) showDraft() {
	d := s.draft
	state := "unsaved draft"
	if d.Persisted() {
		state = fmt.Sprintf("post %d", d.PostID)
	}
	fmt.Printf("%s\n  name:  %s\n  date:  %s\n", state, d.Name, d.DateOfDeath)
	if d.Content != "" {
		fmt.Printf("  content: %d chars\n", len(d.Content))
	}
	if len(d.PlatformIDs) > 0 {
		fmt.Printf("  platforms: %v\n", d.PlatformIDs)
	}
	for i, att := range d.Attachments {
		fmt.Printf("  image %d: %s\n", i+1, att.URL)
	}
}

func (s *Shell) setDate(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: date <yyyy-mm-dd>")
		return
	}
	if _, err := time.Parse("2006-01-02", args[0]); err != nil {
		fmt.Println("date must be yyyy-mm-dd")
		return
	}
	s.draft.DateOfDeath = args[0]
}

func (s *Shell) readContent() {
	fmt.Println("Enter content, finish with a single '.' line:")
	var lines []string
	for {
		line, ok := s.promptRaw("")
		if !ok || line == "." {
			break
		}
		lines = append(lines, line)
	}
	s.draft.Content = strings.Join(lines, "\n")
}

func (s *Shell) generate() {
	type result struct {
		gen services.GenerateResult
		err error
	}
	ch := make(chan result, 1)
	err := s.posts.Generate(context.Background(), s.draft, func(gen services.GenerateResult, err error) {
		ch <- result{gen, err}
	})
	if err != nil {
		fmt.Println("Validation error:", err)
		return
	}
	fmt.Println("Generating post...")
	r := <-ch
	if r.err != nil {
		fmt.Println("Generation failed:", r.err)
		return
	}
	s.draft.Content = r.gen.Content
	s.draft.LastQuery = r.gen.Query
	s.draft.LastSummary = r.gen.Summary
	fmt.Println("---")
	fmt.Println(r.gen.Content)
	fmt.Println("---")
}

func (s *Shell) listPlatforms() {
	type result struct {
		platforms []models.Platform
		err       error
	}
	r := await(func(done func(result)) {
		s.platforms.All(context.Background(), func(ps []models.Platform, err error) {
			done(result{ps, err})
		})
	})
	if r.err != nil {
		fmt.Println("Failed to load platforms:", r.err)
		return
	}
	for _, p := range r.platforms {
		api := ""
		if p.HasAPIAccess() {
			api = " (api)"
		}
		fmt.Printf("  [%d] %s%s\n", p.PlatformID, p.Name, api)
	}
}

func (s *Shell) selectPlatforms(args []string) {
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil || id <= 0 {
			fmt.Printf("not a platform ID: %s\n", a)
			return
		}
		ids = append(ids, id)
	}
	s.draft.PlatformIDs = ids
	fmt.Printf("Selected platforms: %v\n", ids)
}

func (s *Shell) listImages() {
	for i, att := range s.draft.Attachments {
		mark := "pending"
		if att.Registered() {
			mark = fmt.Sprintf("image %d", att.ImageID)
		}
		fmt.Printf("  %d: %s (%s)\n", i+1, att.URL, mark)
	}
	if len(s.draft.Attachments) == 0 {
		fmt.Println("  (no images attached)")
	}
}

func (s *Shell) imageCommand(args []string) {
	if len(args) == 0 {
		fmt.Println("usage: image add|rm|search ...")
		return
	}
	switch args[0] {
	case "add":
		if len(args) < 2 {
			fmt.Println("usage: image add <url> [source]")
			return
		}
		source := ""
		if len(args) > 2 {
			source = strings.Join(args[2:], " ")
		}
		s.draft.Attachments = append(s.draft.Attachments, models.NewAttachment(args[1], source))
		fmt.Println("Attached.")
	case "rm":
		if len(args) != 2 {
			fmt.Println("usage: image rm <n>")
			return
		}
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 || n > len(s.draft.Attachments) {
			fmt.Println("no such image")
			return
		}
		att := s.draft.Attachments[n-1]
		s.draft.Attachments = append(s.draft.Attachments[:n-1], s.draft.Attachments[n:]...)
		// A linked image also has to be unlinked server-side.
		if att.Registered() && s.draft.Persisted() {
			err := await(func(done func(error)) {
				s.images.Unlink(context.Background(), s.draft.PostID, att.ImageID, done)
			})
			if err != nil {
				fmt.Println("Warning: server-side unlink failed:", err)
			}
		}
		fmt.Println("Removed.")
	case "search":
		query := strings.Join(args[1:], " ")
		if query == "" {
			query = strings.TrimSpace(s.draft.Name + " " + s.draft.DateOfDeath)
		}
		type result struct {
			thumbs []string
			err    error
		}
		r := await(func(done func(result)) {
			s.images.Search(context.Background(), query, func(thumbs []string, err error) {
				done(result{thumbs, err})
			})
		})
		if r.err != nil {
			fmt.Println("Image search failed:", r.err)
			return
		}
		for i, t := range r.thumbs {
			fmt.Printf("  %d: %s\n", i+1, t)
		}
		if len(r.thumbs) == 0 {
			fmt.Println("  (no results)")
		}
	default:
		fmt.Println("usage: image add|rm|search ...")
	}
}

func (s *Shell) save() {
	out, started := s.startSave()
	if !started {
		return
	}
	if !out.Saved {
		fmt.Println("Save failed:", out.Message)
		return
	}
	if !out.IDKnown {
		fmt.Println("Warning:", out.Message)
		return
	}
	s.draft.PostID = out.PostID
	if out.PlatformIDs != nil {
		s.draft.PlatformIDs = out.PlatformIDs
	}
	if out.Images != nil {
		atts := make([]models.Attachment, 0, len(out.Images))
		for _, img := range out.Images {
			att := models.NewAttachment(img.URL, img.Source)
			att.ImageID = img.ImageID
			atts = append(atts, att)
		}
		s.draft.Attachments = atts
	}
	if out.PartialFailure() {
		fmt.Println("Warning:", out.Message)
		for _, w := range out.Warnings {
			fmt.Println("  -", w)
		}
	} else {
		fmt.Println(out.Message)
	}
	if out.Posts != nil {
		fmt.Printf("%d posts on the server.\n", len(out.Posts))
	}
}

func (s *Shell) startSave() (services.SaveOutcome, bool) {
	ch := make(chan services.SaveOutcome, 1)
	err := s.saver.Save(context.Background(), s.draft, func(out services.SaveOutcome) { ch <- out })
	if err != nil {
		fmt.Println("Validation error:", err)
		return services.SaveOutcome{}, false
	}
	fmt.Println("Saving...")
	return <-ch, true
}

func (s *Shell) deletePost() {
	if !s.draft.Persisted() {
		fmt.Println("This draft has not been saved yet.")
		return
	}
	confirm, _ := s.prompt(fmt.Sprintf("Delete post %d (%s)? [y/N] ", s.draft.PostID, s.draft.Name))
	if confirm != "y" && confirm != "yes" {
		return
	}
	err := await(func(done func(error)) {
		s.posts.Delete(context.Background(), s.draft.PostID, done)
	})
	if err != nil {
		fmt.Println("Delete failed:", err)
		return
	}
	fmt.Println("Deleted.")
	s.draft = models.NewDraft()
}

func (s *Shell) exportExcel(args []string) {
	dest := filepath.Join(s.exportDir, "dimf-posts.xlsx")
	if len(args) > 0 {
		dest = args[0]
	}
	type result struct {
		path string
		err  error
	}
	r := await(func(done func(result)) {
		s.export.Download(context.Background(), dest, func(path string, err error) {
			done(result{path, err})
		})
	})
	if r.err != nil {
		fmt.Println("Export failed:", r.err)
		return
	}
	fmt.Println("Export written to", r.path)
}

func (s *Shell) prompt(label string) (string, bool) {
	line, ok := s.promptRaw(label)
	return strings.TrimSpace(line), ok
}

func (s *Shell) promptRaw(label string) (string, bool) {
	if label != "" {
		fmt.Print(label)
	}
	if !s.in.Scan() {
		return "", false
	}
	return s.in.Text(), true
}

// readPassword reads a password with terminal echo disabled.
func readPassword(label string) (string, error) {
	fmt.Print(label)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}
