package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
)

func (a *App) getStatus() string {
	snap := a.store.Snapshot()
	if snap.Active() {
		return fmt.Sprintf("(%s) ", snap.User.UserName)
	}
	return ""
}

func (a *App) Root(ctx context.Context) {
	log.Println("Welcome to Inkpost CLI (type 'help' for commands)")

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
