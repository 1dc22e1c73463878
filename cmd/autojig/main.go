package main

import (
	"context"
	"flag"
	"io"
	"os"

	"github.com/tmarchant/autojig/controller"
	"github.com/tmarchant/autojig/ui"
)

func main() {
	var port, baud string
	flag.StringVar(&port, "port", "", "Serial port of the jig. Autodetects when empty.")
	flag.StringVar(&baud, "baud", "", "Baud rate. Defaults to the protocol's 115200.")
	flag.Parse()

	if port != "" {
		os.Setenv("AUTOJIG_PORT", port)
	}
	if baud != "" {
		os.Setenv("AUTOJIG_BAUD", baud)
	}

	if os.Getenv("ENABLE_UI") == "true" {
		runUI()
		return
	}

	runCLI()
}

func runUI() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := controller.NewFromEnv()
	if err != nil {
		panic(err)
	}
	defer c.Close()

	r, w := io.Pipe()

	// read from Stdin also
	go func() {
		defer w.Close()
		io.Copy(w, os.Stdin)
	}()

	jigUI := ui.NewJigUI()

	go func() {
		err = c.Run(ctx, r, io.MultiWriter(os.Stdout, jigUI))
		if err != nil {
			panic(err)
		}
	}()

	jigUI.Run(ctx, w)
	cancel()
}

func runCLI() {
	c, err := controller.NewFromEnv()
	if err != nil {
		panic(err)
	}
	defer c.Close()

	err = c.Run(context.Background(), os.Stdin, os.Stdout)
	if err != nil {
		panic(err)
	}
}
