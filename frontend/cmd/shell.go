package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	ishell "github.com/abiosoft/ishell"
	"github.com/common-nighthawk/go-figure"
	"github.com/jghoshh/streakly/backend/models"
	"github.com/jghoshh/streakly/frontend/client"
	"github.com/jghoshh/streakly/lib/utils"
)

// requestTimeout bounds every API call made from the shell. Suggestions are the slow ones.
const requestTimeout = 90 * time.Second

// guestCommands is a slice of Command structures containing commands that are available to users who have not signed in.
var guestCommands []Command

// userCommands is a slice of Command structures containing commands that are available only to signed in users.
var userCommands []Command

// commonCommands is a slice of Command structures containing commands that are available to all users, regardless of their sign in status.
var commonCommands []Command

// loggedIn is true while a user is remembered in the keyring.
var loggedIn bool

// shell represents an instance of the interactive shell used for this application.
var shell *ishell.Shell

// api is the client every command talks to the server through.
var api *client.Client

// The Command struct defines a user command in the system. Each command has a Name, a Desc (short for description), and a Func (the function to execute when the command is called).
type Command struct {
	Name string                  // Name is the name of the command.
	Desc string                  // Desc is a short description of what the command does.
	Func func(c *ishell.Context) // Func is the function that is executed when the command is invoked.
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// idArg parses the single numeric argument of commands such as 'done 3'.
func idArg(c *ishell.Context) (int, bool) {
	if len(c.Args) != 1 {
		utils.PrintError("usage: " + c.Cmd.Name + " <id>")
		return 0, false
	}
	id, err := strconv.Atoi(c.Args[0])
	if err != nil {
		utils.PrintError("id must be a number")
		return 0, false
	}
	return id, true
}

// signInError turns a failed sign in into the message shown to the user. A rejected
// password is told apart from an unreachable server.
func signInError(err error) string {
	if client.IsStatus(err, http.StatusUnauthorized) {
		return "Incorrect email or password. Please try again."
	}
	return err.Error()
}

// readRequired prompts until a non-empty answer is given.
func readRequired(c *ishell.Context, prompt string) string {
	for {
		c.Print(prompt)
		answer := strings.TrimSpace(c.ReadLine())
		if answer != "" {
			return answer
		}
		c.Println("This field cannot be empty.")
	}
}

func printHabit(c *ishell.Context, h models.Habit) {
	reminder := ""
	if h.Reminder {
		reminder = " (reminder)"
	}
	c.Printf("  [%d] %s at %s, %s priority, streak %d, %d xp%s\n", h.ID, h.Title, h.Time, h.Priority, h.Streak, h.XP, reminder)
}

func printGoal(c *ishell.Context, g models.Goal) {
	c.Printf("  [%d] %s (due %s, %s priority) %d%% done, %d xp\n", g.ID, g.Title, g.Deadline, g.Priority, g.Progress, g.XP)
	for _, m := range g.Milestones {
		mark := " "
		if m.Completed {
			mark = "x"
		}
		c.Printf("      [%s] %d. %s\n", mark, m.ID, m.Title)
		for _, s := range m.Subtasks {
			c.Printf("            - %s\n", s.Title)
		}
	}
}

func signedIn() {
	loggedIn = true
	for _, command := range guestCommands {
		shell.DeleteCmd(command.Name)
	}
	addCommands(shell, userCommands)
}

func signedOut() {
	loggedIn = false
	for _, command := range userCommands {
		shell.DeleteCmd(command.Name)
	}
	addCommands(shell, guestCommands)
}

// InitShell is a function that initializes the shell commands.
// It sets up the commands for guest and user scenarios on top of the commands everyone can run.
func InitShell(c *client.Client) {

	api = c

	// Initialize shell
	shell = ishell.New()

	// Define the commands available to a guest user (not signed in)
	guestCommands = []Command{
		{
			Name: "register",
			Desc: "Create a new account",
			Func: func(c *ishell.Context) {
				var email string
				username := readRequired(c, "Enter Username: ")
				for {
					c.Print("Enter Email: ")
					email = strings.TrimSpace(c.ReadLine())
					if utils.ValidateEmail(email) {
						break
					}
					c.Println("Email is not valid.")
				}
				var password string
				for {
					c.Print("Enter Password: ")
					password = c.ReadPassword()
					if password == "" {
						c.Println("Password cannot be empty.")
						continue
					}
					c.Print("Confirm Password: ")
					if c.ReadPassword() == password {
						break
					}
					c.Println()
					c.Println("Passwords do not match. Please try again.")
					c.Println()
				}
				c.Print("Enter Avatar (optional): ")
				avatar := strings.TrimSpace(c.ReadLine())

				ctx, cancel := requestContext()
				defer cancel()
				if _, err := api.Register(ctx, username, email, password, avatar); err != nil {
					utils.PrintError(err.Error())
					return
				}
				if _, err := api.SignIn(ctx, email, password); err != nil {
					utils.PrintError(err.Error())
					return
				}
				c.Println("Account created successfully. You are now signed in.")
				signedIn()
			},
		},
		{
			Name: "signin",
			Desc: "Sign in to your account",
			Func: func(c *ishell.Context) {
				email := readRequired(c, "Enter Email: ")
				var password string
				for {
					c.Print("Enter Password: ")
					password = c.ReadPassword()
					if len(password) > 0 {
						break
					}
					c.Println("Password cannot be empty.")
				}

				ctx, cancel := requestContext()
				defer cancel()
				u, err := api.SignIn(ctx, email, password)
				if err != nil {
					utils.PrintError(signInError(err))
					return
				}
				c.Printf("Welcome, %s. You are now signed in.\n", u.Username)
				signedIn()
			},
		},
	}

	// Define the commands available to a signed in user
	userCommands = []Command{
		{
			Name: "whoami",
			Desc: "Show the signed in account",
			Func: func(c *ishell.Context) {
				u, ok, err := client.CurrentUser()
				if err != nil {
					utils.PrintError(err.Error())
					return
				}
				if !ok {
					c.Println("Nobody is signed in.")
					return
				}
				c.Printf("%s <%s>, joined %s, theme %s\n", u.Username, u.Email, u.DateJoined, u.Preferences.Theme)
			},
		},
		{
			Name: "signout",
			Desc: "Sign out from your account",
			Func: func(c *ishell.Context) {
				if err := client.ForgetUser(); err != nil {
					utils.PrintError(err.Error())
					return
				}
				c.Println("You are now signed out.")
				signedOut()
			},
		},
	}

	// Define common commands that are always available, regardless of sign in state
	commonCommands = []Command{
		{
			Name: "habits",
			Desc: "List your habits",
			Func: func(c *ishell.Context) {
				ctx, cancel := requestContext()
				defer cancel()
				habits, err := api.Habits(ctx)
				if err != nil {
					utils.PrintError(err.Error())
					return
				}
				if len(habits) == 0 {
					c.Println("No habits yet. Add one with 'addhabit'.")
					return
				}
				for _, h := range habits {
					printHabit(c, h)
				}
			},
		},
		{
			Name: "addhabit",
			Desc: "Add a new habit",
			Func: func(c *ishell.Context) {
				title := readRequired(c, "Title: ")
				timeOfDay := readRequired(c, "Time: ")
				choice := c.MultiChoice([]string{"high", "medium", "low"}, "Priority?")
				if choice < 0 {
					return
				}
				priority := []string{"high", "medium", "low"}[choice]
				c.Print("Remind me? (yes/no): ")
				reminder := strings.EqualFold(strings.TrimSpace(c.ReadLine()), "yes")

				ctx, cancel := requestContext()
				defer cancel()
				h, err := api.AddHabit(ctx, title, timeOfDay, priority, reminder)
				if err != nil {
					utils.PrintError(err.Error())
					return
				}
				c.Println("Habit added:")
				printHabit(c, h)
			},
		},
		{
			Name: "done",
			Desc: "Mark a habit as done today: done <id>",
			Func: func(c *ishell.Context) {
				adjustStreak(c, true)
			},
		},
		{
			Name: "miss",
			Desc: "Mark a habit as missed: miss <id>",
			Func: func(c *ishell.Context) {
				adjustStreak(c, false)
			},
		},
		{
			Name: "rmhabit",
			Desc: "Delete a habit: rmhabit <id>",
			Func: func(c *ishell.Context) {
				id, ok := idArg(c)
				if !ok {
					return
				}
				ctx, cancel := requestContext()
				defer cancel()
				if err := api.DeleteHabit(ctx, id); err != nil {
					utils.PrintError(err.Error())
					return
				}
				c.Println("Habit deleted.")
			},
		},
		{
			Name: "goals",
			Desc: "List your goals",
			Func: func(c *ishell.Context) {
				ctx, cancel := requestContext()
				defer cancel()
				goals, err := api.Goals(ctx)
				if err != nil {
					utils.PrintError(err.Error())
					return
				}
				if len(goals) == 0 {
					c.Println("No goals yet. Ask for one with 'suggest'.")
					return
				}
				for _, g := range goals {
					printGoal(c, g)
				}
			},
		},
		{
			Name: "rmgoal",
			Desc: "Delete a goal: rmgoal <id>",
			Func: func(c *ishell.Context) {
				id, ok := idArg(c)
				if !ok {
					return
				}
				ctx, cancel := requestContext()
				defer cancel()
				if err := api.DeleteGoal(ctx, id); err != nil {
					utils.PrintError(err.Error())
					return
				}
				c.Println("Goal deleted.")
			},
		},
		{
			Name: "suggest",
			Desc: "Describe what you want to achieve and get a goal plan",
			Func: func(c *ishell.Context) {
				prompt := readRequired(c, "What do you want to achieve? ")
				c.ProgressBar().Indeterminate(true)
				c.ProgressBar().Start()
				ctx, cancel := requestContext()
				defer cancel()
				s, err := api.Suggest(ctx, prompt)
				c.ProgressBar().Stop()
				if err != nil {
					utils.PrintError(err.Error())
					return
				}
				if s.Content != "" {
					c.Println(s.Content)
				}
				c.Println("Saved goal:")
				printGoal(c, s.Goal)
			},
		},
		{
			Name: "stats",
			Desc: "Show your level and experience",
			Func: func(c *ishell.Context) {
				ctx, cancel := requestContext()
				defer cancel()
				sum, err := api.Stats(ctx)
				if err != nil {
					utils.PrintError(err.Error())
					return
				}
				c.Printf("Level %d, %d xp\n", sum.Level, sum.TotalXP)
				c.Printf("Longest streak: %d\n", sum.LongestStreak)
				c.Printf("Habits: %d, goals: %d (%d completed)\n", sum.Habits, sum.Goals, sum.CompletedGoals)
			},
		},
		{
			Name: "exit",
			Desc: "Exit the application",
			Func: func(c *ishell.Context) {
				fmt.Println("Goodbye!")
				os.Exit(0)
			},
		},
	}

	// The help command is created separately to avoid the cyclic dependency
	commonCommands = append(commonCommands, Command{
		Name: "help",
		Desc: "List available commands",
		Func: func(c *ishell.Context) {
			c.Println("Available commands:")
			if loggedIn {
				for _, command := range userCommands {
					c.Println("  |-- '" + command.Name + "' : " + command.Desc)
				}
			} else {
				for _, command := range guestCommands {
					c.Println("  |-- '" + command.Name + "' : " + command.Desc)
				}
			}
			for _, command := range commonCommands {
				c.Println("  |-- '" + command.Name + "' : " + command.Desc)
			}
			c.Println()
		},
	})
}

func adjustStreak(c *ishell.Context, completed bool) {
	id, ok := idArg(c)
	if !ok {
		return
	}
	ctx, cancel := requestContext()
	defer cancel()
	h, err := api.AdjustStreak(ctx, id, completed)
	if err != nil {
		utils.PrintError(err.Error())
		return
	}
	c.Printf("%s: streak is now %d\n", h.Title, h.Streak)
}

// addCommands is a helper function that adds the given commands to the shell.
//
// It accepts two arguments:
// - shell: The ishell shell where the commands will be added.
// - commands: A slice of Command structs to be added to the shell.
func addCommands(shell *ishell.Shell, commands []Command) {
	for _, command := range commands {
		shell.AddCmd(&ishell.Cmd{
			Name: command.Name,
			Help: command.Desc,
			Func: command.Func,
		})
	}
}

// Execute is the main function that executes the shell.
// It welcomes the user, adds the commands matching the remembered sign in state, and runs the shell.
func Execute() {
	shell.Println()
	figure.NewFigure("Streakly", "basic", true).Print()
	shell.Println("Welcome to Streakly -- habits, goals and streaks. Type 'help' to see a list of commands.")

	addCommands(shell, commonCommands)

	u, ok, err := client.CurrentUser()
	if err != nil {
		utils.PrintError(err.Error())
	}
	if ok {
		shell.Printf("Signed in as %s.\n", u.Username)
		loggedIn = true
		addCommands(shell, userCommands)
	} else {
		addCommands(shell, guestCommands)
	}

	shell.Run()
}
