package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/gubarz/tripdoc/internal/builder"
	"github.com/gubarz/tripdoc/internal/compose"
	"github.com/gubarz/tripdoc/internal/config"
	"github.com/gubarz/tripdoc/internal/delivery"
	"github.com/gubarz/tripdoc/internal/document"
	"github.com/gubarz/tripdoc/internal/generate"
	"github.com/gubarz/tripdoc/internal/imagery"
	"github.com/gubarz/tripdoc/internal/itinerary"
	"github.com/gubarz/tripdoc/internal/llm"
	"github.com/gubarz/tripdoc/internal/parser"
	"github.com/gubarz/tripdoc/internal/render"
	"github.com/gubarz/tripdoc/internal/ui"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "tripdoc",
	Short: "Travel itinerary documents",
	Long: `Turns a generated travel itinerary into a printable PDF.

The itinerary is either marker text (TITLE:, TIMELINE_START, STOP:, ...)
or a structured JSON plan. Each stop becomes a panel with a photo and a map
link, and the finished document is saved, printed or emailed.`,
	SilenceUsage: true,
}

var renderCmd = &cobra.Command{
	Use:   "render [file|-]",
	Short: "Build a PDF from an existing itinerary",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRender,
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate an itinerary with an LLM and build the PDF",
	Long: `Collects the trip parameters (from flags, or an interactive form when
any required one is missing), asks the configured LLM for an itinerary and
builds the PDF.`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [file|-]",
	Short: "Print the composed blocks and parser diagnostics as YAML",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInspect,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(renderCmd, planCmd, inspectCmd)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().StringP("out", "o", "", "Output directory, - for stdout")
	rootCmd.PersistentFlags().Bool("no-images", false, "Skip photo lookups")
	rootCmd.PersistentFlags().String("label", "", "Footer product label")

	for _, c := range []*cobra.Command{renderCmd, inspectCmd} {
		c.Flags().Bool("json", false, "Input is a structured JSON plan")
		c.Flags().StringP("destination", "d", "", "Destination used for headings and image searches")
	}
	renderCmd.Flags().StringP("recipient", "r", "", "Recipient shown in the footer")
	renderCmd.Flags().Bool("email", false, "Email the PDF to the recipient")

	planCmd.Flags().String("source", "", "Traveling from")
	planCmd.Flags().StringP("destination", "d", "", "Traveling to")
	planCmd.Flags().Int("days", 0, fmt.Sprintf("Trip length (%d-%d)", itinerary.MinDays, itinerary.MaxDays))
	planCmd.Flags().String("budget", "", "Standard, High-End or Luxury")
	planCmd.Flags().Int("travelers", 0, fmt.Sprintf("Party size (%d-%d)", itinerary.MinTravelers, itinerary.MaxTravelers))
	planCmd.Flags().String("vibe", "", "Relaxing, Adventure, Cultural, Foodie or Family")
	planCmd.Flags().StringP("recipient", "r", "", "Email address the guide is prepared for")
	planCmd.Flags().StringP("format", "f", "text", "Generation format: text or json")
	planCmd.Flags().Bool("send", false, "Email the PDF after saving it")

	bindFlags()
}

func bindFlags() {
	viper.BindPFlag("output.dir", rootCmd.PersistentFlags().Lookup("out"))
	viper.BindPFlag("product_label", rootCmd.PersistentFlags().Lookup("label"))
}

func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
	}
}

// setupLogging installs the stderr handler; --verbose wins over log_level
func setupLogging(cmd *cobra.Command) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(config.GetLogLevel())); err != nil {
		level = slog.LevelInfo
	}
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// applyOutputFlags maps --out - and the email flags onto the output mode
func applyOutputFlags(cmd *cobra.Command, emailFlag string) (delivery.OutputMode, error) {
	if config.GetOutputDir() == "-" {
		config.SetOutputMode(string(delivery.OutputStdout))
	}
	if emailFlag != "" {
		if e, _ := cmd.Flags().GetBool(emailFlag); e {
			config.SetOutputMode(string(delivery.OutputEmail))
		}
	}
	return delivery.ParseMode(config.GetOutputMode())
}

func newComposer(cmd *cobra.Command, images bool) *compose.Composer {
	var resolver imagery.Resolver = imagery.None
	if noImages, _ := cmd.Flags().GetBool("no-images"); images && !noImages {
		if config.C.Unsplash.AccessKey == "" {
			slog.Warn("no unsplash.access_key configured, panels will have no photos")
		} else {
			resolver = imagery.NewUnsplash(imagery.UnsplashConfig{
				AccessKey: config.C.Unsplash.AccessKey,
				BaseURL:   config.C.Unsplash.BaseURL,
				Size:      config.C.Unsplash.Size,
				Timeout:   config.GetImageTimeout(),
			})
		}
	}

	opts := compose.DefaultOptions()
	opts.Concurrency = config.GetImageConcurrency()
	opts.Timeout = config.GetImageTimeout()
	if w := config.GetImageMaxWidth(); w > 0 {
		opts.Normalize.MaxWidth = w
	}
	return compose.New(resolver, opts)
}

func newBuilder(cmd *cobra.Command) *builder.Builder {
	return builder.New(newComposer(cmd, true), render.Options{ProductLabel: config.GetProductLabel()})
}

func newDeliverer(stdout io.Writer) *delivery.Deliverer {
	mailer := delivery.NewSMTP(delivery.SMTPConfig{
		Host:     config.C.SMTP.Host,
		Port:     config.C.SMTP.Port,
		Username: config.C.SMTP.Username,
		Password: config.C.SMTP.Password,
		From:     config.C.SMTP.From,
	})
	return delivery.New(config.GetOutputDir()).WithMailer(mailer).WithStdout(stdout)
}

// openInput returns the named file, or stdin for "" and "-"
func openInput(args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, fmt.Errorf("input error: %w", err)
	}
	return f, nil
}

func readPlan(r io.Reader) (*itinerary.Plan, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("input error: %w", err)
	}
	return itinerary.DecodePlan(data)
}

func runRender(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	ctx := cmd.Context()

	mode, err := applyOutputFlags(cmd, "email")
	if err != nil {
		return err
	}

	dest, _ := cmd.Flags().GetString("destination")
	recipient, _ := cmd.Flags().GetString("recipient")
	bc := itinerary.BuildContext{Destination: dest, Recipient: recipient}

	in, err := openInput(args)
	if err != nil {
		return err
	}
	defer in.Close()

	b := newBuilder(cmd)
	var res *builder.Result
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		plan, err := readPlan(in)
		if err != nil {
			return err
		}
		res, err = b.FromPlan(ctx, bc, plan)
		if err != nil {
			return fmt.Errorf("build error: %w", err)
		}
	} else {
		res, err = b.FromReader(ctx, bc, in)
		if err != nil {
			return fmt.Errorf("build error: %w", err)
		}
	}

	return deliver(cmd, mode, bc, res)
}

func deliver(cmd *cobra.Command, mode delivery.OutputMode, bc itinerary.BuildContext, res *builder.Result) error {
	stderr := cmd.ErrOrStderr()
	path, err := newDeliverer(cmd.OutOrStdout()).Deliver(cmd.Context(), mode, delivery.Package{
		Destination: bc.Destination,
		Recipient:   bc.Recipient,
		Data:        res.Document.Bytes,
	})
	if path != "" {
		fmt.Fprintln(stderr, ui.Success(fmt.Sprintf("saved %s (%d pages)", path, res.Document.Pages)))
	}
	if err != nil {
		return err
	}
	if mode == delivery.OutputEmail {
		fmt.Fprintln(stderr, ui.Success("emailed "+bc.Recipient))
	}
	return nil
}

// requestFromFlags reads whatever trip parameters were given on the command line
func requestFromFlags(cmd *cobra.Command) itinerary.TripRequest {
	var req itinerary.TripRequest
	req.Source, _ = cmd.Flags().GetString("source")
	req.Destination, _ = cmd.Flags().GetString("destination")
	req.Days, _ = cmd.Flags().GetInt("days")
	req.Budget, _ = cmd.Flags().GetString("budget")
	req.Travelers, _ = cmd.Flags().GetInt("travelers")
	req.Vibe, _ = cmd.Flags().GetString("vibe")
	req.Email, _ = cmd.Flags().GetString("recipient")
	return req
}

func runPlan(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	ctx := cmd.Context()
	stderr := cmd.ErrOrStderr()

	mode, err := applyOutputFlags(cmd, "send")
	if err != nil {
		return err
	}
	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := generate.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	req := requestFromFlags(cmd)
	if err := req.Validate(); err != nil {
		slog.Debug("opening trip form", "reason", err)
		req, err = ui.RunForm(req)
		if errors.Is(err, ui.ErrCancelled) {
			fmt.Fprintln(stderr, ui.Info("cancelled"))
			return nil
		}
		if err != nil {
			return err
		}
	}

	provider, err := llm.NewProvider(config.C.LLM)
	if err != nil {
		return err
	}
	gen := generate.New(provider.WithLogger(slog.Default()))
	b := newBuilder(cmd)
	bc := req.Context()

	fmt.Fprintln(stderr, ui.Info(fmt.Sprintf("planning %d days in %s with %s", req.Days, req.Destination, provider.Model())))

	var res *builder.Result
	switch format {
	case generate.FormatJSON:
		plan, err := gen.Plan(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintln(stderr, ui.Info("designing your guide"))
		if res, err = b.FromPlan(ctx, bc, plan); err != nil {
			return fmt.Errorf("build error: %w", err)
		}
	default:
		text, err := gen.Text(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintln(stderr, ui.Info("designing your guide"))
		if res, err = b.FromText(ctx, bc, text); err != nil {
			return fmt.Errorf("build error: %w", err)
		}
	}

	return deliver(cmd, mode, bc, res)
}

// inspection is the YAML shape printed by inspect
type inspection struct {
	Section     parser.Section      `yaml:"final_section"`
	Blocks      []document.Block    `yaml:"blocks"`
	Diagnostics []parser.Diagnostic `yaml:"diagnostics,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	ctx := cmd.Context()

	dest, _ := cmd.Flags().GetString("destination")
	bc := itinerary.BuildContext{Destination: dest}

	in, err := openInput(args)
	if err != nil {
		return err
	}
	defer in.Close()

	composer := newComposer(cmd, false)
	var out inspection
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		plan, err := readPlan(in)
		if err != nil {
			return err
		}
		if out.Blocks, err = composer.ComposePlan(ctx, bc, plan); err != nil {
			return err
		}
	} else {
		res, err := parser.Parse(bc, in)
		if err != nil {
			return fmt.Errorf("parse error: %w", err)
		}
		out.Section = res.Section
		out.Diagnostics = res.Diagnostics
		if out.Blocks, err = composer.Compose(ctx, bc, res.Records); err != nil {
			return err
		}
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd.Version = version
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
