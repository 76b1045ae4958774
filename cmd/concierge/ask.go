package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"concierge/internal/domain"

	"github.com/spf13/cobra"
)

func askCmd() *cobra.Command {
	var (
		domainHint string
		advertise  []string
	)

	cmd := &cobra.Command{
		Use:   "ask [text]",
		Short: "Send a single request from the terminal",
		Long:  "Routes one request through the supervisor. When the request pauses for approval, the decision is read from stdin.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			setupLogger(cfg)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(cfg, false)
			if err != nil {
				return err
			}
			defer a.close()

			req := domain.Request{
				Text:          strings.Join(args, " "),
				DomainHint:    domainHint,
				Advertisement: domain.Advertisement{Names: advertise},
			}
			reply, err := a.supervisor.Handle(ctx, req)
			if err != nil {
				return err
			}

			// Resolve suspensions interactively until the request finishes.
			for reply.Suspension != nil {
				decision, err := promptDecision(reply.Suspension)
				if err != nil {
					return err
				}
				reply, err = a.supervisor.Resume(ctx, domain.ResumeRequest{
					CheckpointID: reply.Suspension.CheckpointID,
					Decision:     decision,
				})
				if err != nil {
					return err
				}
			}

			printResponse(reply.Response)
			return nil
		},
	}

	cmd.Flags().StringVar(&domainHint, "domain", "", "skip classification and route to this domain")
	cmd.Flags().StringSliceVar(&advertise, "advertise", nil, "capability names to advertise for this request")
	return cmd
}

func promptDecision(s *domain.Suspension) (domain.Decision, error) {
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, s.Prompt)
	if len(s.Options) > 0 {
		fmt.Fprintf(os.Stderr, "Options: %s\n", strings.Join(s.Options, ", "))
	}
	fmt.Fprint(os.Stderr, "> ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return domain.Decision{}, fmt.Errorf("read decision: %w", err)
	}
	return domain.Decision{Selected: strings.TrimSpace(line)}, nil
}

func printResponse(resp *domain.Response) {
	fmt.Println(resp.Text)
	for _, ev := range resp.UIEvents {
		fmt.Fprintf(os.Stderr, "[ui] %s %v\n", ev.Name, ev.Properties)
	}
}
