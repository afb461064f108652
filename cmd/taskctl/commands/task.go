package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/R3E-Network/tasktracker/internal/app/domain/task"
	"github.com/R3E-Network/tasktracker/internal/httputil"
)

func newTaskCmd(opts *options) *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Manage a user's tasks",
	}
	taskCmd.AddCommand(
		newTaskCreateCmd(opts),
		newTaskListCmd(opts),
		newTaskGetCmd(opts),
		newTaskUpdateCmd(opts),
		newTaskDeleteCmd(opts),
	)
	return taskCmd
}

func newTaskCreateCmd(opts *options) *cobra.Command {
	var (
		title       string
		description string
		status      string
		dueDate     string
	)
	cmd := &cobra.Command{
		Use:   "create USER_ID",
		Short: "Create a task (new tasks always start as Todo)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := task.ParseStatus(status)
			if err != nil {
				return err
			}
			req := httputil.CreateTaskRequest{Title: title, Description: description, Status: st}
			if cmd.Flags().Changed("due-date") {
				req.DueDate = &dueDate
			}
			t, err := opts.client().CreateTask(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), t)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Task title (required)")
	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().StringVar(&status, "status", string(task.StatusTodo), "Requested status: Todo, InProgress or Done")
	cmd.Flags().StringVar(&dueDate, "due-date", "", "Optional due date, accepted but not stored")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newTaskListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list USER_ID",
		Short: "List a user's tasks in creation order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := opts.client().ListTasks(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), list)
		},
	}
}

func newTaskGetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get USER_ID TASK_ID",
		Short: "Show a single task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := opts.client().GetTask(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), t)
		},
	}
}

func newTaskUpdateCmd(opts *options) *cobra.Command {
	var title, description, status string
	cmd := &cobra.Command{
		Use:   "update USER_ID TASK_ID",
		Short: "Update the given fields of a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req httputil.UpdateTaskRequest
			if cmd.Flags().Changed("title") {
				req.Title = &title
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if cmd.Flags().Changed("status") {
				st, err := task.ParseStatus(status)
				if err != nil {
					return err
				}
				req.Status = &st
			}
			if req.Title == nil && req.Description == nil && req.Status == nil {
				return fmt.Errorf("nothing to update: set --title, --description or --status")
			}
			t, err := opts.client().UpdateTask(cmd.Context(), args[0], args[1], req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), t)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&status, "status", "", "New status: Todo, InProgress or Done")
	return cmd
}

func newTaskDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete USER_ID TASK_ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.client().DeleteTask(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted task %s\n", args[1])
			return nil
		},
	}
}
