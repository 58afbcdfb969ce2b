package doctor

import (
	"fmt"
	"os"

	"snaptext/shutdown"
)

func setupInterruptHandler() {
	stop := shutdown.Channel()
	go func() {
		<-stop
		resetTerminal()
		fmt.Println("\nInterrupted")
		os.Exit(1)
	}()
}
