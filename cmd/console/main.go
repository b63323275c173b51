package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"roadreport/internal/config"
	"roadreport/internal/engine"
	"roadreport/internal/model"
	"roadreport/internal/service"
)

// Local console driver: runs one dialogue session against stdin/stdout with
// no server, no Redis, no Mongo. Useful for exercising the slot engine and
// phrasing layer by hand.
func main() {
	modeFlag := flag.String("mode", "COMPLAINT", "report mode: COMPLAINT or FEEDBACK")
	flag.Parse()

	mode := model.Mode(strings.ToUpper(*modeFlag))
	if mode != model.ModeComplaint && mode != model.ModeFeedback {
		log.Fatalf("unknown mode %q", *modeFlag)
	}

	phrasingCfg := config.DefaultPhrasingConfig()
	phrasing := service.NewPhrasingServiceWith(phrasingCfg)
	if !phrasingCfg.IsEnabled() {
		fmt.Println("(GROQ_API_KEY not set, replies are scripted)")
	}

	ctx := context.Background()
	machine := engine.NewMachine(mode)
	state := engine.NewState(uuid.New().String(), mode, time.Now())

	greeting := machine.Begin(state, time.Now())
	state.AppendTurn(model.RoleAssistant, greeting)
	fmt.Println("bot:", greeting)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you: ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "/quit" {
			break
		}

		state.AppendTurn(model.RoleUser, text)
		result := machine.Advance(state, text, time.Now())

		switch result.Kind {
		case engine.TurnCompleted:
			machine.Stamp(state, time.Now())
			fmt.Println("bot: All fields captured. Final record:")
			printRecord(machine, state)
			machine.MarkSubmitted(state, time.Now())
			return

		case engine.TurnReviewReady:
			fmt.Println("bot:", result.BaseText)
			printRecord(machine, state)
			fmt.Print("confirm? [y/n]: ")
			if scanner.Scan() && strings.HasPrefix(strings.ToLower(strings.TrimSpace(scanner.Text())), "y") {
				machine.Stamp(state, time.Now())
				machine.MarkSubmitted(state, time.Now())
				fmt.Println("bot: Submitted. Thank you.")
				return
			}
			fmt.Println("bot: Okay, not submitting. Bye.")
			return

		case engine.TurnIgnored:
			fmt.Println("bot:", result.BaseText)
			return

		default:
			phrased := phrasing.Rephrase(ctx, service.PhrasingRequest{
				UserInput:  text,
				BaseText:   result.BaseText,
				PriorTurns: state.Transcript,
				TargetSlot: result.NextSlot,
				Hint:       result.Hint,
			})
			state.AppendTurn(model.RoleAssistant, phrased.Text)
			fmt.Println("bot:", phrased.Text)
		}
	}
}

func printRecord(machine *engine.Machine, state *model.DialogueState) {
	for _, entry := range machine.ReviewEntries(state) {
		fmt.Printf("  %-22s %s\n", entry.Field+":", entry.Value)
	}
}
