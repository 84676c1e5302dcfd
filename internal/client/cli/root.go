package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	s = s + string(a.monitor.State())
	return fmt.Sprintf("(%s)", s)
}

// Root runs the interactive command loop until the user exits or stdin is
// closed.
func (a *App) Root(ctx context.Context) {

	log.Println("Welcome to the AssetTrack scanner CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("at %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Println("Available commands: scan, confirm, (l)ist, delete, sync, search, replace, status, logout, exit")
			} else {
				fmt.Println("Available commands: login, status, exit")
			}

		case "login":
			_ = a.Login(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "scan":
			_ = a.Scan(ctx)
		case "confirm":
			_ = a.Confirm(ctx, args)
		case "l", "list":
			a.list(ctx)
		case "delete":
			a.delete(ctx, args)
		case "sync":
			a.syncNow(ctx)
		case "search":
			a.search(ctx)
		case "replace":
			a.replace(ctx)
		case "status":
			a.status(ctx)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}
