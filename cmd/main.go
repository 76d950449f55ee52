package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/interviewhub-backend/internal/app"
	"github.com/yungbote/interviewhub-backend/internal/pkg/shutdown"
)

func main() {
	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close(context.Background())

	go func() {
		<-ctx.Done()
		a.Log.Info("shutdown signal received")
	}()

	if err := a.Run(); err != nil {
		fmt.Printf("server exited: %v\n", err)
		os.Exit(1)
	}
}
