// housedutyctl is the operator's entry point to the scheduling engine:
// generate instances for a date, advance the lifecycle, act on single
// instances, inspect a day, and export the calendar feed.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/housedutyapp/houseduty/config"
	"github.com/housedutyapp/houseduty/internal/calendar"
	"github.com/housedutyapp/houseduty/internal/clock"
	"github.com/housedutyapp/houseduty/internal/domain"
	"github.com/housedutyapp/houseduty/internal/engine"
	"github.com/housedutyapp/houseduty/internal/storage"
	"github.com/housedutyapp/houseduty/internal/tzconv"
)

const usage = `Usage: housedutyctl <command> [flags]

Commands:
  generate  -date YYYY-MM-DD       generate instances for a local date
  advance   [-now RFC3339]         advance the task lifecycle
  complete  -id <instance-id>      mark an instance completed
  undo      -id <instance-id>      undo a completion
  skip      -id <instance-id>      skip an instance
  list      -date YYYY-MM-DD       list instances for a local date
  stats     -date YYYY-MM-DD       completion stats for a local date
  ics       -from DATE -to DATE    print the ICS calendar feed
  add-member -name NAME [-role ROLE]
                                   register a family member
  add-task  -name NAME -assignee MEMBER-ID -frequency FREQ -due DESCRIPTOR
            [-category CAT] [-overdue DELAY]
                                   register a recurring task definition
  seed                             create sample members and definitions
`

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to init storage: %v", err)
	}
	defer store.Close()

	clk := clock.SystemClock{}
	conv := tzconv.New(cfg.Timezone)
	eng := engine.New(store, conv, cfg.Slots, clk)

	switch os.Args[1] {
	case "generate":
		date := dateFlag("generate", cfg)
		instances, err := eng.GenerateForDate(date)
		if err != nil {
			log.Fatalf("generate: %v", err)
		}
		fmt.Printf("generated %d instances for %s\n", len(instances), date)
		printInstances(instances, cfg.Timezone)

	case "advance":
		fs := flag.NewFlagSet("advance", flag.ExitOnError)
		nowStr := fs.String("now", "", "advance as of this RFC3339 instant (default: now)")
		fs.Parse(os.Args[2:])
		now := clk.Now()
		if *nowStr != "" {
			now, err = time.Parse(time.RFC3339, *nowStr)
			if err != nil {
				log.Fatalf("invalid -now: %v", err)
			}
		}
		n, err := eng.Advance(now)
		if err != nil {
			log.Fatalf("advance: %v", err)
		}
		fmt.Printf("advanced %d instances\n", n)

	case "complete":
		runAction(idFlag("complete"), eng.Complete, cfg)

	case "undo":
		runAction(idFlag("undo"), eng.Undo, cfg)

	case "skip":
		runAction(idFlag("skip"), eng.Skip, cfg)

	case "list":
		date := dateFlag("list", cfg)
		instances, err := eng.ListForDate(date)
		if err != nil {
			log.Fatalf("list: %v", err)
		}
		printInstances(instances, cfg.Timezone)

	case "stats":
		date := dateFlag("stats", cfg)
		stats, err := eng.CompletionStats(date)
		if err != nil {
			log.Fatalf("stats: %v", err)
		}
		fmt.Printf("%s: %d/%d completed (skips excluded)\n", date, stats.Completed, stats.Countable)

	case "ics":
		fs := flag.NewFlagSet("ics", flag.ExitOnError)
		from := fs.String("from", "", "start date (YYYY-MM-DD)")
		to := fs.String("to", "", "end date (YYYY-MM-DD)")
		fs.Parse(os.Args[2:])
		if *from == "" || *to == "" {
			log.Fatal("ics: -from and -to are required")
		}
		feed, err := calendar.New(store, conv, cfg.Slots).Feed(*from, *to)
		if err != nil {
			log.Fatalf("ics: %v", err)
		}
		fmt.Print(feed)

	case "add-member":
		fs := flag.NewFlagSet("add-member", flag.ExitOnError)
		name := fs.String("name", "", "member name")
		role := fs.String("role", "adult", "member role (adult, child, pet)")
		fs.Parse(os.Args[2:])
		if *name == "" {
			log.Fatal("add-member: -name is required")
		}
		m := &domain.Member{ID: uuid.NewString(), Name: *name, Role: *role}
		if err := store.CreateMember(m); err != nil {
			log.Fatalf("add-member: %v", err)
		}
		fmt.Printf("member %s created (%s)\n", m.ID, m.Name)

	case "add-task":
		def, err := parseTaskFlags(store, cfg)
		if err != nil {
			log.Fatalf("add-task: %v", err)
		}
		if err := store.CreateRecurringTask(def); err != nil {
			log.Fatalf("add-task: %v", err)
		}
		fmt.Printf("recurring task %s created (%s, %s/%s)\n", def.ID, def.Name, def.Frequency, def.Due)

	case "seed":
		if err := seed(store); err != nil {
			log.Fatalf("seed: %v", err)
		}
		fmt.Println("seeded sample household")

	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

// parseTaskFlags builds a definition from flags, validating the due
// descriptor against the frequency grammar before it is stored.
func parseTaskFlags(store *storage.Storage, cfg *config.Config) (*domain.RecurringTask, error) {
	fs := flag.NewFlagSet("add-task", flag.ExitOnError)
	name := fs.String("name", "", "task name")
	assignee := fs.String("assignee", "", "assigned member id")
	freqStr := fs.String("frequency", "", "daily, weekly or monthly")
	due := fs.String("due", "", "due descriptor (slot, weekday or day of month)")
	catStr := fs.String("category", "other", "task category")
	overdueStr := fs.String("overdue", "immediate", "overdue delay (immediate, 1h, 6h, 1d, 3d, 7d)")
	fs.Parse(os.Args[2:])

	if *name == "" || *assignee == "" || *freqStr == "" || *due == "" {
		return nil, fmt.Errorf("-name, -assignee, -frequency and -due are required")
	}

	freq, err := domain.ParseFrequency(*freqStr)
	if err != nil {
		return nil, err
	}
	category, err := domain.ParseCategory(*catStr)
	if err != nil {
		return nil, err
	}
	overdue, err := domain.ParseOverdueDelay(*overdueStr)
	if err != nil {
		return nil, err
	}

	member, err := store.GetMember(*assignee)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, fmt.Errorf("member %s not found", *assignee)
	}

	def := &domain.RecurringTask{
		ID:           uuid.NewString(),
		Name:         *name,
		Category:     category,
		AssignedTo:   member.ID,
		Frequency:    freq,
		Due:          *due,
		OverdueAfter: overdue,
		Active:       true,
	}
	if _, _, err := engine.ResolveWindow(def, time.Now().In(cfg.Timezone), cfg.Slots); err != nil {
		return nil, err
	}
	return def, nil
}

func dateFlag(name string, cfg *config.Config) string {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	date := fs.String("date", "", "local date (YYYY-MM-DD, default: today)")
	fs.Parse(os.Args[2:])
	if *date == "" {
		return time.Now().In(cfg.Timezone).Format("2006-01-02")
	}
	return *date
}

func idFlag(name string) string {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	id := fs.String("id", "", "task instance id")
	fs.Parse(os.Args[2:])
	if *id == "" {
		log.Fatalf("%s: -id is required", name)
	}
	return *id
}

func runAction(id string, action func(string) (*domain.TaskInstance, error), cfg *config.Config) {
	inst, err := action(id)
	if err != nil {
		log.Fatalf("%v", err)
	}
	printInstances([]*domain.TaskInstance{inst}, cfg.Timezone)
}

func printInstances(instances []*domain.TaskInstance, tz *time.Location) {
	for _, t := range instances {
		fmt.Printf("%s  %-10s %-24s due %s (%s, %s)\n",
			t.ID, t.Status, t.Name, t.DueAt.In(tz).Format("2006-01-02 15:04"), t.Category, t.AssignedTo)
	}
}

func seed(store *storage.Storage) error {
	alice := &domain.Member{ID: uuid.NewString(), Name: "Alice", Role: "adult"}
	rex := &domain.Member{ID: uuid.NewString(), Name: "Rex", Role: "pet"}
	for _, m := range []*domain.Member{alice, rex} {
		if err := store.CreateMember(m); err != nil {
			return err
		}
	}

	defs := []*domain.RecurringTask{
		{
			ID: uuid.NewString(), Name: "Give medication", Category: domain.CategoryMedication,
			AssignedTo: rex.ID, Frequency: domain.FrequencyDaily, Due: "morning",
			OverdueAfter: domain.OverdueAfter1h, Active: true,
		},
		{
			ID: uuid.NewString(), Name: "Evening feeding", Category: domain.CategoryFeeding,
			AssignedTo: rex.ID, Frequency: domain.FrequencyDaily, Due: "evening",
			OverdueAfter: domain.OverdueImmediate, Active: true,
		},
		{
			ID: uuid.NewString(), Name: "Bathe the dog", Category: domain.CategoryCleaning,
			AssignedTo: alice.ID, Frequency: domain.FrequencyWeekly, Due: "sunday",
			OverdueAfter: domain.OverdueAfter1d, Active: true,
		},
		{
			ID: uuid.NewString(), Name: "Flea treatment", Category: domain.CategoryHealth,
			AssignedTo: alice.ID, Frequency: domain.FrequencyMonthly, Due: "15",
			OverdueAfter: domain.OverdueAfter3d, Active: true,
		},
	}
	for _, d := range defs {
		if err := store.CreateRecurringTask(d); err != nil {
			return err
		}
	}
	return nil
}
