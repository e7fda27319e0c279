// Command careerguide drives the session and cache manager from a terminal.
//
//	careerguide [-config path] <command> [args]
//
// Commands: login, register, logout, status, check, refresh, counselors,
// messages, send, settings, clear-cache.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/lborres/careerguide"
	"github.com/lborres/careerguide/config"
)

var errUsage = errors.New("usage")

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: careerguide [-config path] [-server url] <command> [args]

Commands:
  login <email> <password> [user|counselor]
  register -first F -last L -email E -password P [-role student|counselor]
  logout
  status
  check
  refresh
  counselors [id]
  messages <counselor-id>
  send <counselor-id> <message>
  settings [key value]
  clear-cache`)
}

func main() {
	os.Exit(realMain(os.Args[1:]))
}

// realMain returns the exit code so deferred cleanup runs before exit.
func realMain(args []string) int {
	fs := flag.NewFlagSet("careerguide", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to config file")
	serverFlag := fs.String("server", "", "Override API base URL")
	fs.Usage = usage
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if fs.NArg() == 0 {
		usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Println("Error:", err)
		return 1
	}
	if *serverFlag != "" {
		cfg.API.BaseURL = strings.TrimRight(*serverFlag, "/")
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client, closeStore, err := careerguide.NewFromConfig(ctx, cfg, log)
	if err != nil {
		fmt.Println("Error:", err)
		return 1
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn("close store", "error", err)
		}
	}()

	if res := client.Session.Init(ctx); !res.Success {
		log.Warn("session not restored", "message", res.Message)
	}

	if err := run(ctx, client, fs.Arg(0), fs.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) {
			usage()
			return 2
		}
		fmt.Println("Error:", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, client *careerguide.Client, cmd string, args []string) error {
	switch cmd {
	case "login":
		if len(args) < 2 {
			return errUsage
		}
		loginAs := ""
		if len(args) > 2 {
			loginAs = args[2]
		}
		return report(client.Session.Login(ctx, args[0], args[1], loginAs))

	case "register":
		return register(ctx, client, args)

	case "logout":
		return report(client.Session.Logout(ctx))

	case "status":
		printStatus(ctx, client)
		return nil

	case "check":
		if !client.Session.CheckTokenValidity(ctx) {
			return errors.New("session is not valid; log in again")
		}
		fmt.Println("Token valid")
		return nil

	case "refresh":
		return report(client.Session.RefreshUserData(ctx))

	case "counselors":
		if len(args) == 1 {
			c, err := client.Resources.Counselor(ctx, args[0])
			if err != nil {
				return err
			}
			printCounselors([]careerguide.Counselor{*c})
			return nil
		}
		list, err := client.Resources.Counselors(ctx)
		if err != nil {
			return err
		}
		printCounselors(list)
		return nil

	case "messages":
		if len(args) != 1 {
			return errUsage
		}
		msgs, err := client.Resources.Messages(ctx, args[0])
		if err != nil {
			return err
		}
		for _, m := range msgs {
			at := time.UnixMilli(m.SentAt).Local().Format("2006/01/02 15:04")
			fmt.Printf("[%s] %s: %s\n", at, m.Sender, m.Body)
		}
		return nil

	case "send":
		if len(args) < 2 {
			return errUsage
		}
		msg, err := client.Resources.SendMessage(ctx, args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Println("Sent", msg.ID)
		return nil

	case "settings":
		return settings(ctx, client, args)

	case "clear-cache":
		if err := client.Resources.ClearCache(ctx); err != nil {
			return err
		}
		fmt.Println("Cache cleared")
		return nil

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func register(ctx context.Context, client *careerguide.Client, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	var in careerguide.RegistrationInput
	role := fs.String("role", string(careerguide.RoleStudent), "student|counselor")
	fs.StringVar(&in.FirstName, "first", "", "First name")
	fs.StringVar(&in.LastName, "last", "", "Last name")
	fs.StringVar(&in.Email, "email", "", "Email")
	fs.StringVar(&in.Password, "password", "", "Password")
	fs.StringVar(&in.Phone, "phone", "", "Phone (counselor)")
	fs.StringVar(&in.Specialization, "specialization", "", "Specialization (counselor)")
	fs.StringVar(&in.Experience, "experience", "", "Experience (counselor)")
	fs.StringVar(&in.Availability, "availability", "", "Availability (counselor)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	in.Role = careerguide.Role(*role)
	return report(client.Session.Register(ctx, in))
}

func settings(ctx context.Context, client *careerguide.Client, args []string) error {
	switch len(args) {
	case 0:
		s := client.Settings.Get(ctx)
		fmt.Printf("notificationsEnabled: %t\nemailNotifications: %t\ntheme: %s\nlanguage: %s\n",
			s.NotificationsEnabled, s.EmailNotifications, s.Theme, s.Language)
		return nil
	case 2:
		var value any = args[1]
		if b, err := strconv.ParseBool(args[1]); err == nil {
			value = b
		}
		if err := client.Settings.Set(ctx, args[0], value); err != nil {
			return err
		}
		fmt.Println("Saved", args[0])
		return nil
	default:
		return errUsage
	}
}

func printStatus(ctx context.Context, client *careerguide.Client) {
	s := client.Session.Snapshot()
	if !s.IsAuthenticated {
		fmt.Println("Not logged in")
		return
	}
	fmt.Printf("Logged in as %v <%v> (%s)\n", s.User["name"], s.User["email"], s.Role)

	if at, ok := client.Resources.LastSync(ctx); ok {
		fmt.Println("Last sync:", at.Local().Format(time.RFC1123))
	}
	stats := client.Resources.Stats()
	fmt.Printf("Cache: %d hits, %d misses\n", stats.Hits, stats.Misses)
}

func printCounselors(list []careerguide.Counselor) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSPECIALTY\tRATING\tRATE")
	for _, c := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.1f\t%s\n", c.ID, c.Name, c.Specialty, c.Rating, c.Price())
	}
	w.Flush()
}

func report(res careerguide.Result) error {
	if !res.Success {
		return errors.New(res.Message)
	}
	fmt.Println(res.Message)
	return nil
}
