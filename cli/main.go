package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"hebscribe/config"
	"hebscribe/links"
	"hebscribe/logging"
	"hebscribe/pipeline"
	"hebscribe/retry"
	"hebscribe/storage"
	"hebscribe/whisper"
	"hebscribe/youtube"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "captions":
		cmdCaptions(args)
	case "transcribe":
		cmdTranscribe(args)
	case "run":
		cmdRun(args)
	case "batch":
		cmdBatch(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `hebscribe - Hebrew transcripts for YouTube videos

Usage:
  hebscribe captions [flags] [links-file]      Fetch existing Hebrew captions (phase 1)
  hebscribe transcribe [flags] [remaining]     Transcribe remaining videos locally (phase 2)
  hebscribe run [flags]                        Run both phases in sequence
  hebscribe batch [flags]                      Split the links file into batches
  hebscribe help                               Show this help message

Examples:
  hebscribe captions                           # Read links.txt, write transcripts + remaining_links.txt
  hebscribe transcribe                         # Process remaining_links.txt with Whisper
  hebscribe transcribe --browser chrome        # Reuse Chrome session cookies for restricted videos
  hebscribe transcribe --cookies cookies.txt   # Or a Netscape cookie file
  hebscribe run --skip-existing                # Both phases, skipping already-transcribed videos
  hebscribe batch --size 15                    # links_batch_01.txt, links_batch_02.txt, ...

Exit status is 0 when the batch ran to completion, even if individual videos
failed; the printed summary shows the failure rate. Configuration errors
(missing links file, invalid settings) exit non-zero.

For help on a specific command: hebscribe <command> -h
`)
}

// loadConfig loads configuration and initializes logging. Configuration
// errors are fatal before any processing.
func loadConfig(debug bool) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := logging.Setup(cfg.LogDir, debug); err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// signalContext returns a context cancelled on SIGINT/SIGTERM so an
// interrupted run leaves the remaining file and finished transcripts behind
// as a resumption point.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// applyCookieFlags overrides the configured cookie source with command-line
// flags and re-validates, so flag combinations honor the same mutual
// exclusion as configuration values.
func applyCookieFlags(cfg *config.Config, browser, cookies string) error {
	if browser != "" {
		cfg.CookiesFromBrowser = browser
	}
	if cookies != "" {
		cfg.CookieFile = cookies
	}
	return cfg.Validate()
}

// lockRun takes the advisory run lock on the output directory so two
// scheduled invocations cannot write transcripts concurrently.
func lockRun(outputDir string) *storage.FileLock {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}
	lock := storage.NewFileLock(filepath.Join(outputDir, "run"))
	if err := lock.Lock(10 * time.Second); err != nil {
		fmt.Fprintf(os.Stderr, "Error: another hebscribe run is active: %v\n", err)
		os.Exit(1)
	}
	return lock
}

func cmdCaptions(args []string) {
	fs := flag.NewFlagSet("captions", flag.ExitOnError)
	skipExisting := fs.Bool("skip-existing", false, "Skip videos that already have a transcript file")
	debug := fs.Bool("debug", false, "Enable debug logging")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: hebscribe captions [flags] [links-file]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	cfg := loadConfig(*debug)
	linksFile := cfg.LinksFile
	if argv := fs.Args(); len(argv) > 0 {
		linksFile = argv[0]
	}

	ctx, cancel := signalContext()
	defer cancel()

	lock := lockRun(cfg.OutputDir)
	defer lock.Unlock()

	summary, err := runCaptionPhase(ctx, cfg, linksFile, *skipExisting)
	if summary != nil {
		summary.Print(os.Stdout)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func cmdTranscribe(args []string) {
	fs := flag.NewFlagSet("transcribe", flag.ExitOnError)
	browser := fs.String("browser", "", "Browser to take session cookies from (chrome, firefox, ...)")
	cookies := fs.String("cookies", "", "Netscape-format cookie file")
	skipExisting := fs.Bool("skip-existing", false, "Skip videos that already have a transcript file")
	debug := fs.Bool("debug", false, "Enable debug logging")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: hebscribe transcribe [flags] [remaining-file]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	cfg := loadConfig(*debug)
	if err := applyCookieFlags(cfg, *browser, *cookies); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	remainingFile := cfg.RemainingFile
	if argv := fs.Args(); len(argv) > 0 {
		remainingFile = argv[0]
	}

	ctx, cancel := signalContext()
	defer cancel()

	lock := lockRun(cfg.OutputDir)
	defer lock.Unlock()

	summary, err := runTranscribePhase(ctx, cfg, remainingFile, *skipExisting)
	if summary != nil {
		summary.Print(os.Stdout)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Run 'hebscribe captions' first to produce %s\n", remainingFile)
		os.Exit(1)
	}
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	browser := fs.String("browser", "", "Browser to take session cookies from (chrome, firefox, ...)")
	cookies := fs.String("cookies", "", "Netscape-format cookie file")
	skipExisting := fs.Bool("skip-existing", false, "Skip videos that already have a transcript file")
	debug := fs.Bool("debug", false, "Enable debug logging")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: hebscribe run [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	cfg := loadConfig(*debug)
	if err := applyCookieFlags(cfg, *browser, *cookies); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signalContext()
	defer cancel()

	lock := lockRun(cfg.OutputDir)
	defer lock.Unlock()

	capSummary, err := runCaptionPhase(ctx, cfg, cfg.LinksFile, *skipExisting)
	if capSummary != nil {
		capSummary.Print(os.Stdout)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	trSummary, err := runTranscribePhase(ctx, cfg, cfg.RemainingFile, *skipExisting)
	if trSummary != nil {
		trSummary.Print(os.Stdout)
	}
	if err != nil {
		// An empty remaining file is the happy path: every video had captions.
		if errors.Is(err, links.ErrNoLinks) {
			fmt.Println("All videos had Hebrew captions; nothing to transcribe locally.")
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	capSummary.Combine(trSummary).Print(os.Stdout)
}

func cmdBatch(args []string) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	size := fs.Int("size", 15, "Links per batch file")
	prefix := fs.String("prefix", "links_batch", "Batch file name prefix")
	dir := fs.String("dir", ".", "Directory to write batch files into")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: hebscribe batch [flags] [links-file]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	cfg := loadConfig(false)
	linksFile := cfg.LinksFile
	if argv := fs.Args(); len(argv) > 0 {
		linksFile = argv[0]
	}

	files, err := links.Split(linksFile, *dir, *prefix, *size)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Created %d batch files:\n", len(files))
	for _, f := range files {
		fmt.Printf("  %s\n", f)
	}
}

// runCaptionPhase wires the caption phase from configuration and runs it.
func runCaptionPhase(ctx context.Context, cfg *config.Config, linksFile string, skipExisting bool) (*pipeline.Summary, error) {
	list, err := links.Read(linksFile)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"file": linksFile, "links": len(list)}).Info("Starting caption phase")

	store, err := storage.NewTranscriptStore(cfg.OutputDir)
	if err != nil {
		return nil, err
	}

	fetcher := youtube.NewTimedtextClient()
	fetcher.RetryConfig = retryConfig(cfg)

	var tracks pipeline.TrackChecker
	if cfg.APIKey != "" {
		lister, err := youtube.NewTrackLister(ctx, cfg.APIKey)
		if err != nil {
			logrus.WithError(err).Warn("Data API unavailable, relying on timedtext only")
		} else {
			tracks = lister
		}
	}

	run := &pipeline.CaptionRun{
		Fetcher:      fetcher,
		Tracks:       tracks,
		Store:        store,
		Languages:    cfg.Languages,
		Interval:     cfg.RequestInterval,
		SkipExisting: skipExisting,
	}

	summary, remaining, runErr := run.Run(ctx, list)
	if len(remaining) > 0 || runErr == nil {
		if err := links.WriteRemaining(cfg.RemainingFile, remaining); err != nil {
			logrus.WithError(err).Error("Could not write remaining links file")
			if runErr == nil {
				runErr = err
			}
		} else {
			logrus.WithFields(logrus.Fields{
				"file":  cfg.RemainingFile,
				"count": len(remaining),
			}).Info("Remaining links written")
		}
	}
	return summary, runErr
}

// runTranscribePhase wires the transcribe phase from configuration and runs it.
func runTranscribePhase(ctx context.Context, cfg *config.Config, remainingFile string, skipExisting bool) (*pipeline.Summary, error) {
	list, err := links.Read(remainingFile)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"file": remainingFile, "links": len(list)}).Info("Starting transcribe phase")

	store, err := storage.NewTranscriptStore(cfg.OutputDir)
	if err != nil {
		return nil, err
	}

	downloader := youtube.NewAudioDownloader()
	downloader.Path = cfg.YtdlpPath
	downloader.Timeout = cfg.YtdlpTimeout
	downloader.WorkDir = cfg.WorkDir
	downloader.Credentials = credentials(cfg)
	downloader.RetryConfig = retryConfig(cfg)

	transcriber := whisper.NewTranscriber()
	transcriber.Path = cfg.WhisperPath
	transcriber.Model = cfg.WhisperModel
	transcriber.Timeout = cfg.WhisperTimeout

	logrus.WithField("auth", downloader.Credentials.Describe()).Info("Download credentials")

	run := &pipeline.TranscribeRun{
		Downloader:  downloader,
		Transcriber: transcriber,
		Store:       store,
		ResolveTitle: func(ctx context.Context, url, videoID string) string {
			return youtube.SafeTitle(ctx, url, videoID, cfg.YtdlpPath)
		},
		Interval:     cfg.RequestInterval,
		SkipExisting: skipExisting,
	}

	return run.Run(ctx, list)
}

// credentials builds the cookie source configured for yt-dlp.
func credentials(cfg *config.Config) youtube.Credentials {
	switch {
	case cfg.CookiesFromBrowser != "":
		return youtube.BrowserCookies{Browser: cfg.CookiesFromBrowser}
	case cfg.CookieFile != "":
		return youtube.CookieFile{Path: cfg.CookieFile}
	default:
		return youtube.NoAuth{}
	}
}

// retryConfig translates the configured retry settings for the youtube
// clients.
func retryConfig(cfg *config.Config) *retry.Config {
	return &retry.Config{
		MaxRetries:     uint64(cfg.MaxRetries),
		InitialBackoff: cfg.InitialBackoff,
		MaxBackoff:     cfg.MaxBackoff,
		Multiplier:     2.0,
		JitterFraction: 0.2,
	}
}
