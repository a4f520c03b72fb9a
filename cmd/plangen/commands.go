package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"spartan/trainer/internal/domain"
	"spartan/trainer/internal/export"
	"spartan/trainer/internal/pace"
	"spartan/trainer/internal/planner"
	"spartan/trainer/internal/service"
)

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var athletePath, startDate string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "generate --athlete <profile.yaml>",
		Short: "Generate or regenerate the plan of an athlete profile",
		Long: "Creates the athlete on first use and prints its id. Put that id in the\n" +
			"profile as `id:` to regenerate the same athlete's plan later.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(athletePath) == "" {
				return fmt.Errorf("--athlete is required")
			}
			f, err := readAthleteFile(athletePath)
			if err != nil {
				return err
			}
			profile, err := f.athlete()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			ctx := cmd.Context()

			if dryRun {
				return previewProfile(out, profile, startDate)
			}

			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			athlete, created, err := upsertAthlete(ctx, a, f.ID, profile)
			if err != nil {
				return err
			}
			if created {
				_, _ = fmt.Fprintf(out, "created athlete %s\n", athlete.ID.Hex())
			}

			res, err := a.plans.RegeneratePlan(ctx, athlete.ID, startDate)
			if err != nil {
				return err
			}
			sessions, err := a.plans.GetSessions(ctx, res.Plan.ID, "", "")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "plan %s %s..%s: %d sessions over %d weeks\n",
				res.Plan.ID.Hex(), res.Plan.StartDate, res.Plan.EndDate, res.SessionCount, res.TotalWeeks)
			printLayout(out, res.Layout, res.NoAvailableDays, res.HorizonClamped)
			return printSessions(out, sessions)
		},
	}
	cmd.Flags().StringVar(&athletePath, "athlete", "", "athlete profile YAML")
	cmd.Flags().StringVar(&startDate, "start", "", "first plan day yyyy-MM-dd (default today)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the plan without saving anything")
	return cmd
}

// upsertAthlete updates the athlete with the given hex id, or creates a new
// one when id is empty.
func upsertAthlete(ctx context.Context, a *app, id string, profile *domain.Athlete) (*domain.Athlete, bool, error) {
	if id == "" {
		athlete, err := a.athletes.CreateAthlete(ctx, profile)
		return athlete, true, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, false, fmt.Errorf("invalid athlete id %q", id)
	}
	if _, err := a.athletes.UpdateThresholds(ctx, oid, profile.ThresholdPaceSecPerKm, profile.ThresholdHrBpm); err != nil {
		return nil, false, err
	}
	athlete, err := a.athletes.UpdateAvailability(ctx, oid, profile.Availability)
	if err != nil {
		return nil, false, err
	}
	if profile.Goal != nil {
		if athlete, err = a.athletes.SetGoal(ctx, oid, *profile.Goal); err != nil {
			return nil, false, err
		}
	}
	return athlete, false, nil
}

func previewProfile(out io.Writer, profile *domain.Athlete, startDate string) error {
	if err := service.ValidateAvailability(profile.Availability); err != nil {
		return err
	}
	if profile.Goal == nil {
		return service.ErrNoRaceGoal
	}
	race, err := time.Parse(domain.DateLayout, profile.Goal.RaceDate)
	if err != nil {
		return fmt.Errorf("goal.race_date %q: %w", profile.Goal.RaceDate, service.ErrInvalidDate)
	}
	start := time.Now()
	if startDate != "" {
		if start, err = time.Parse(domain.DateLayout, startDate); err != nil {
			return fmt.Errorf("--start %q: %w", startDate, service.ErrInvalidDate)
		}
	}
	res := planner.Generate(planner.Input{
		StartDate:             start,
		RaceDate:              race,
		Availability:          profile.Availability,
		ThresholdPaceSecPerKm: profile.ThresholdPaceSecPerKm,
		ThresholdHrBpm:        profile.ThresholdHrBpm,
	})
	_, _ = fmt.Fprintf(out, "preview: %d sessions over %d weeks\n", len(res.Sessions), res.TotalWeeks)
	printLayout(out, res.Layout, res.NoAvailableDays, res.HorizonClamped)
	return printSessions(out, res.Sessions)
}

func newZonesCmd(opts *rootOptions) *cobra.Command {
	var athleteID, thresholdPace string
	var thresholdHr int

	cmd := &cobra.Command{
		Use:   "zones",
		Short: "Print pace and heart-rate zones",
		Long:  "Uses --athlete when given, otherwise --pace/--hr, falling back to the configured defaults.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			var zones *service.AthleteZones
			if athleteID != "" {
				oid, err := primitive.ObjectIDFromHex(athleteID)
				if err != nil {
					return fmt.Errorf("invalid athlete id %q", athleteID)
				}
				if zones, err = a.athletes.GetZones(ctx, oid); err != nil {
					return err
				}
			} else {
				t := a.defaults
				paceDefaulted, hrDefaulted := true, true
				if thresholdPace != "" {
					p := pace.ParseSecPerKm(thresholdPace)
					if !p.Parsed {
						return fmt.Errorf("--pace %q is not M:SS", thresholdPace)
					}
					t.PaceSecPerKm, paceDefaulted = float64(p.Seconds), false
				}
				if thresholdHr > 0 {
					t.HrBpm, hrDefaulted = thresholdHr, false
				}
				zones = service.ZonesFor(t, paceDefaulted, hrDefaulted)
			}
			return printZones(cmd.OutOrStdout(), zones)
		},
	}
	cmd.Flags().StringVar(&athleteID, "athlete", "", "athlete id")
	cmd.Flags().StringVar(&thresholdPace, "pace", "", "threshold pace M:SS per km")
	cmd.Flags().IntVar(&thresholdHr, "hr", 0, "threshold heart rate in bpm")
	return cmd
}

func newSessionsCmd(opts *rootOptions) *cobra.Command {
	var planID, from, to string
	cmd := &cobra.Command{
		Use:   "sessions --plan <id>",
		Short: "List stored sessions of a plan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			oid, err := primitive.ObjectIDFromHex(planID)
			if err != nil {
				return fmt.Errorf("--plan: invalid plan id %q", planID)
			}
			ctx := cmd.Context()
			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			sessions, err := a.plans.GetSessions(ctx, oid, from, to)
			if err != nil {
				return err
			}
			return printSessions(cmd.OutOrStdout(), sessions)
		},
	}
	cmd.Flags().StringVar(&planID, "plan", "", "plan id")
	cmd.Flags().StringVar(&from, "from", "", "first date yyyy-MM-dd")
	cmd.Flags().StringVar(&to, "to", "", "last date yyyy-MM-dd")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var planID, rangeName, exportType, outDir string
	cmd := &cobra.Command{
		Use:   "export --plan <id>",
		Short: "Export the sessions from today through the next week or month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			oid, err := primitive.ObjectIDFromHex(planID)
			if err != nil {
				return fmt.Errorf("--plan: invalid plan id %q", planID)
			}
			ctx := cmd.Context()
			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.exports.Export(ctx, service.ExportRequest{
				PlanID: oid,
				Range:  domain.ExportRange(rangeName),
				Type:   domain.ExportType(exportType),
			})
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			path := filepath.Join(outDir, res.Document.FileName)
			if err := os.WriteFile(path, res.Document.Data, 0o644); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes, %s..%s)\n", path, len(res.Document.Data), res.Job.RangeStart, res.Job.RangeEnd)
			return nil
		},
	}
	cmd.Flags().StringVar(&planID, "plan", "", "plan id")
	cmd.Flags().StringVar(&rangeName, "range", "week", "week|month")
	cmd.Flags().StringVar(&exportType, "type", "json", "json|fit|fit_binary")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	var planID string
	cmd := &cobra.Command{
		Use:   "import --plan <id> <export.json>",
		Short: "Replace a plan's sessions with those of a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			oid, err := primitive.ObjectIDFromHex(planID)
			if err != nil {
				return fmt.Errorf("--plan: invalid plan id %q", planID)
			}
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()
			doc, err := export.ParseJSON(file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.plans.GetPlan(ctx, oid); err != nil {
				return err
			}
			n, err := a.store.Sessions().ReplaceForPlan(ctx, oid, doc.ToSessions())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d sessions into plan %s\n", n, planID)
			return nil
		},
	}
	cmd.Flags().StringVar(&planID, "plan", "", "plan id")
	return cmd
}

// --- Output ---

func printLayout(out io.Writer, l planner.DayLayout, noDays, clamped bool) {
	if noDays {
		_, _ = fmt.Fprintln(out, "no available days: the plan is empty")
		return
	}
	_, _ = fmt.Fprintf(out, "long run: %s  quality: %s  easy: %s\n", l.LongRunDay.Label(), dayList(l.QualityDays), dayList(l.EasyDays))
	if clamped {
		_, _ = fmt.Fprintln(out, "race is less than a week away: horizon raised to one week")
	}
}

func dayList(days []domain.DayKey) string {
	if len(days) == 0 {
		return "-"
	}
	labels := make([]string, len(days))
	for i, d := range days {
		labels[i] = d.Label()
	}
	return strings.Join(labels, ",")
}

func printSessions(out io.Writer, sessions []domain.Session) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DATE\tDAY\tTYPE\tTIME\tTITLE")
	for _, s := range sessions {
		day := ""
		if d, err := time.Parse(domain.DateLayout, s.SessionDate); err == nil {
			day = domain.DayKeyOf(d).Label()
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.SessionDate, day, s.SessionType.Label(), pace.SecondsToDisplay(totalSeconds(s)), s.Title)
	}
	return w.Flush()
}

func totalSeconds(s domain.Session) int {
	total := 0
	for _, st := range s.Steps {
		if st.DurationType == domain.DurationTime {
			total += st.DurationValue
		}
	}
	return total
}

func printZones(out io.Writer, z *service.AthleteZones) error {
	note := func(defaulted bool) string {
		if defaulted {
			return " (default)"
		}
		return ""
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "threshold pace %s/km%s\n", z.ThresholdPaceDisplay, note(z.PaceDefaulted))
	_, _ = fmt.Fprintln(w, "ZONE\tNAME\tPACE /km")
	for _, p := range z.Pace {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s-%s\n", p.Number, p.Name, p.LowDisplay, p.HighDisplay)
	}
	_, _ = fmt.Fprintf(w, "threshold HR %d bpm%s\n", z.ThresholdHrBpm, note(z.HrDefaulted))
	_, _ = fmt.Fprintln(w, "ZONE\tNAME\tBPM")
	for _, h := range z.HR {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%d-%d\n", h.Number, h.Name, h.Low, h.High)
	}
	return w.Flush()
}
