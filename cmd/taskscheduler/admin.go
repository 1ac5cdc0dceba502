package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/Strob0t/TaskScheduler/internal/adapter/filestore"
	"github.com/Strob0t/TaskScheduler/internal/config"
	"github.com/Strob0t/TaskScheduler/internal/domain/task"
	"github.com/Strob0t/TaskScheduler/internal/service"
)

// runAdmin dispatches admin subcommands that work on today's bucket directly.
func runAdmin(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" {
		printAdminHelp()
		return nil
	}

	switch args[0] {
	case "list":
		return runAdminList(args[1:], os.Stdout)
	case "pending":
		return runAdminPending(args[1:], os.Stdout)
	case "add":
		return runAdminAdd(args[1:], os.Stdout)
	case "complete":
		return runAdminComplete(args[1:], os.Stdin, os.Stdout)
	case "status":
		return runAdminStatus(args[1:], os.Stdout)
	case "delete":
		return runAdminDelete(args[1:], os.Stdout)
	case "buckets":
		return runAdminBuckets(args[1:], os.Stdout)
	default:
		printAdminHelp()
		return fmt.Errorf("unknown admin command: %s", args[0])
	}
}

func printAdminHelp() {
	fmt.Fprintf(os.Stderr, `Usage: taskscheduler admin <command> [options]

Commands:
  list       List today's tasks
  pending    List today's pending tasks that are due now
  add        Add a task to today's bucket
  complete   Mark a task completed
  status     Set a task's status
  delete     Delete a task
  buckets    List the day buckets on disk
  help       Show this help message

Examples:
  taskscheduler admin add --title "Backup" --start 2026-10-15T22:00 --order 1
  taskscheduler admin complete --id 1760518800000 --note "done"
  taskscheduler admin status --id 1760518800000 --status running
`)
}

// adminDeps is what every admin command needs.
type adminDeps struct {
	store *filestore.Store
	tasks *service.TaskService
}

var loadAdminDeps = func() (*adminDeps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	loc, err := cfg.Storage.Location()
	if err != nil {
		return nil, err
	}
	store := filestore.New(filestore.Options{BaseDir: cfg.Storage.BaseDir, Location: loc})
	return &adminDeps{store: store, tasks: service.NewTaskService(store, nil, nil)}, nil
}

func runAdminList(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	deps, err := loadAdminDeps()
	if err != nil {
		return err
	}
	tasks, err := deps.tasks.List(context.Background())
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	return printTasks(out, deps.store, tasks)
}

func runAdminPending(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("pending", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	deps, err := loadAdminDeps()
	if err != nil {
		return err
	}
	tasks, err := deps.tasks.ListPending(context.Background())
	if err != nil {
		return fmt.Errorf("list pending tasks: %w", err)
	}
	return printTasks(out, deps.store, tasks)
}

func runAdminAdd(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	title := fs.String("title", "", "task title (required)")
	description := fs.String("description", "", "task description")
	start := fs.String("start", "", "start time, RFC 3339 or YYYY-MM-DDTHH:MM (default now)")
	order := fs.Int("order", 0, "sort order, lower runs first")
	if err := fs.Parse(args); err != nil {
		return err
	}

	deps, err := loadAdminDeps()
	if err != nil {
		return err
	}

	startTime := *start
	if startTime == "" {
		startTime = deps.store.Now().Format(time.RFC3339)
	}
	t, err := deps.tasks.Create(context.Background(), &task.CreateRequest{
		Title:       *title,
		Description: *description,
		StartTime:   startTime,
		Order:       task.OrderValue(*order),
	})
	if err != nil {
		return fmt.Errorf("add task: %w", err)
	}

	_, _ = fmt.Fprintf(out, "Task added: %s (order=%d, start=%s)\n", t.ID, t.Order, t.StartTime.Format(time.RFC3339))
	return nil
}

func runAdminComplete(args []string, in *os.File, out io.Writer) error {
	fs := flag.NewFlagSet("complete", flag.ContinueOnError)
	id := fs.String("id", "", "task ID (required)")
	note := fs.String("note", "", "completion note (prompted on a terminal if not provided)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("--id is required")
	}

	desc := *note
	if desc == "" && term.IsTerminal(int(in.Fd())) { //nolint:gosec // fd fits in int
		var err error
		desc, err = promptLine(in, "Completion note: ")
		if err != nil {
			return fmt.Errorf("read note: %w", err)
		}
	}

	return setStatus(out, *id, string(task.StatusCompleted), desc)
}

func runAdminStatus(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	id := fs.String("id", "", "task ID (required)")
	status := fs.String("status", "", "pending, running or completed (required)")
	note := fs.String("note", "", "completion note when status is completed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("--id is required")
	}
	if *status == "" {
		return fmt.Errorf("--status is required")
	}
	return setStatus(out, *id, *status, *note)
}

func setStatus(out io.Writer, id, status, note string) error {
	deps, err := loadAdminDeps()
	if err != nil {
		return err
	}
	t, err := deps.tasks.UpdateStatus(context.Background(), id, task.UpdateStatusRequest{
		Status:               status,
		CompletedDescription: note,
	})
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Task %s is now %s\n", t.ID, t.Status)
	return nil
}

func runAdminDelete(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	id := fs.String("id", "", "task ID (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("--id is required")
	}

	deps, err := loadAdminDeps()
	if err != nil {
		return err
	}
	if err := deps.tasks.Delete(context.Background(), *id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Task %s deleted\n", *id)
	return nil
}

func runAdminBuckets(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("buckets", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	deps, err := loadAdminDeps()
	if err != nil {
		return err
	}
	keys, err := deps.store.Buckets()
	if err != nil {
		return fmt.Errorf("list buckets: %w", err)
	}
	if len(keys) == 0 {
		_, _ = fmt.Fprintln(out, "No buckets found.")
		return nil
	}

	today := deps.store.BucketKey()
	for _, k := range keys {
		marker := ""
		if k == today {
			marker = " (today)"
		}
		_, _ = fmt.Fprintln(out, k+marker)
	}
	return nil
}

func printTasks(out io.Writer, store *filestore.Store, tasks []task.Task) error {
	if len(tasks) == 0 {
		_, _ = fmt.Fprintf(out, "No tasks in bucket %s.\n", store.BucketKey())
		return nil
	}

	// Status is the last column so its escape codes do not skew tabwriter widths.
	color := colorEnabled(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tORDER\tSTART\tTITLE\tSTATUS")
	for i := range tasks {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
			tasks[i].ID, tasks[i].Order, tasks[i].StartTime.In(store.Location()).Format("15:04"),
			tasks[i].Title, renderStatus(tasks[i].Status, color))
	}
	return w.Flush()
}

// promptLine writes prompt to stderr and reads one line from in.
func promptLine(in io.Reader, prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
