package frontend

import (
	"github.com/jghoshh/streakly/frontend/client"
	"github.com/jghoshh/streakly/frontend/cmd"
)

// RunFrontend starts the interactive shell against the server at serverURL.
func RunFrontend(serverURL string) {
	cmd.InitShell(client.New(serverURL))
	cmd.Execute()
}
