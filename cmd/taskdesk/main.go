package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"

	"github.com/taskdesk/taskdesk/internal/client"
	"github.com/taskdesk/taskdesk/internal/config"
	"github.com/taskdesk/taskdesk/internal/task"
)

var (
	app    = kingpin.New("taskdesk", "Task manager CLI")
	server = app.Flag("server", "Server base URL").String()

	createCmd         = app.Command("create", "Create a new task")
	createTitle       = createCmd.Arg("title", "Task title").Required().String()
	createDescription = createCmd.Arg("description", "Task description").Required().String()

	listCmd    = app.Command("list", "List tasks")
	listStatus = listCmd.Flag("status", "Filter by status").String()
	listSearch = listCmd.Flag("search", "Search in title and description").String()

	showCmd = app.Command("show", "Show task details")
	showID  = showCmd.Arg("id", "Task ID").Required().String()

	editCmd         = app.Command("edit", "Edit task fields")
	editID          = editCmd.Arg("id", "Task ID").Required().String()
	editTitle       = editCmd.Flag("title", "New title").String()
	editDescription = editCmd.Flag("description", "New description").String()

	statusCmd   = app.Command("status", "Change task status")
	statusID    = statusCmd.Arg("id", "Task ID").Required().String()
	statusValue = statusCmd.Arg("status", "New status (pending, in-progress, completed)").Required().String()
	statusForce = statusCmd.Flag("force", "Skip the forward-only transition check").Bool()

	deleteCmd = app.Command("delete", "Delete a task")
	deleteID  = deleteCmd.Arg("id", "Task ID").Required().String()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	baseURL := env.ServerURL
	if *server != "" {
		baseURL = *server
	}
	c := client.NewTaskClient(baseURL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, command, c); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, c *client.TaskClient) error {
	switch command {
	case createCmd.FullCommand():
		t, err := c.CreateTask(ctx, *createTitle, *createDescription)
		if err != nil {
			return err
		}
		printTask(t)
	case listCmd.FullCommand():
		tasks, err := c.ListTasks(ctx, *listStatus, *listSearch)
		if err != nil {
			return err
		}
		printTaskList(tasks)
	case showCmd.FullCommand():
		t, err := c.GetTask(ctx, *showID)
		if err != nil {
			return err
		}
		printTask(t)
	case editCmd.FullCommand():
		patch := task.PatchRequest{}
		if *editTitle != "" {
			patch.Title = editTitle
		}
		if *editDescription != "" {
			patch.Description = editDescription
		}
		t, err := c.UpdateTask(ctx, *editID, patch)
		if err != nil {
			return err
		}
		printTask(t)
	case statusCmd.FullCommand():
		t, err := c.ChangeTaskStatus(ctx, *statusID, *statusValue, *statusForce)
		if err != nil {
			return err
		}
		printTask(t)
	case deleteCmd.FullCommand():
		t, err := c.DeleteTask(ctx, *deleteID)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %s %q\n", t.ID, t.Title)
	}
	return nil
}

func printTaskList(tasks []*task.Task) {
	if len(tasks) == 0 {
		fmt.Println("No tasks found")
		return
	}
	for _, t := range tasks {
		fmt.Printf("%s  %s  %s\n", t.ID, statusColor(t.Status).Sprintf("%-11s", t.Status), t.Title)
	}
}

func printTask(t *task.Task) {
	fmt.Printf("ID:          %s\n", t.ID)
	fmt.Printf("Title:       %s\n", t.Title)
	fmt.Printf("Description: %s\n", t.Description)
	fmt.Printf("Status:      %s\n", statusColor(t.Status).Sprint(t.Status))
	fmt.Printf("Created:     %s\n", t.CreatedAt.Local())
	fmt.Printf("Updated:     %s\n", t.UpdatedAt.Local())
}

func statusColor(s task.Status) *color.Color {
	switch s {
	case task.StatusPending:
		return color.New(color.FgYellow)
	case task.StatusInProgress:
		return color.New(color.FgBlue)
	case task.StatusCompleted:
		return color.New(color.FgGreen)
	default:
		return color.New()
	}
}
