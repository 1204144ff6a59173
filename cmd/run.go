package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tranvd/attendance-kiosk/internal/alerting"
	"github.com/tranvd/attendance-kiosk/internal/attendance"
	"github.com/tranvd/attendance-kiosk/internal/camera"
	"github.com/tranvd/attendance-kiosk/internal/config"
	"github.com/tranvd/attendance-kiosk/internal/geometry"
	"github.com/tranvd/attendance-kiosk/internal/inference"
	"github.com/tranvd/attendance-kiosk/internal/liveness"
	"github.com/tranvd/attendance-kiosk/internal/pipeline"
	"github.com/tranvd/attendance-kiosk/internal/recognition"
	"github.com/tranvd/attendance-kiosk/internal/store/postgres"
	"github.com/tranvd/attendance-kiosk/internal/worker"
)

// recognitionQueueSize bounds the frame-to-ledger queue. Recognitions beyond
// this are dropped and retried on the next confirmed frame.
const recognitionQueueSize = 16

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the kiosk",
	Long: `Run the attendance kiosk: process camera frames, verify liveness,
match faces against the enrolled gallery, and record attendance.`,
	RunE: runKiosk,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("camera", "", "MJPEG camera stream URL (defaults to CAMERA_URL)")
	runCmd.Flags().Int("frame-interval", 200, "Minimum milliseconds between processed frames")
}

func resolveCameraURL(cmd *cobra.Command) (string, error) {
	url := mustGetString(cmd, "camera")
	if url == "" {
		url = os.Getenv("CAMERA_URL")
	}
	if url == "" {
		return "", errors.New("camera stream URL is required (--camera or CAMERA_URL)")
	}
	return url, nil
}

// loadGallery reads the matching gallery, preferring the database over the
// YAML file.
func loadGallery(ctx context.Context, employees *postgres.EmployeeRepository, cfg *config.Config) ([]recognition.Identity, error) {
	identities, err := employees.GalleryIdentities(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading gallery from database: %w", err)
	}
	if len(identities) > 0 {
		fmt.Printf("Loaded %d identities from database\n", len(identities))
		return identities, nil
	}

	if _, err := os.Stat(cfg.Recognition.GalleryPath); err != nil {
		fmt.Println("Warning: gallery is empty, every face will be unknown")
		return nil, nil
	}

	identities, err = recognition.LoadGallery(cfg.Recognition.GalleryPath)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Loaded %d identities from %s\n", len(identities), cfg.Recognition.GalleryPath)
	return identities, nil
}

func runKiosk(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	cameraURL, err := resolveCameraURL(cmd)
	if err != nil {
		return err
	}
	frameInterval := time.Duration(mustGetInt(cmd, "frame-interval")) * time.Millisecond

	fmt.Printf("Connecting to PostgreSQL database...\n")
	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	employees := postgres.NewEmployeeRepository(pool)
	logs := postgres.NewLogRepository(pool)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	identities, err := loadGallery(ctx, employees, cfg)
	if err != nil {
		return err
	}

	matcher := recognition.NewMatcher(identities,
		cfg.Recognition.SimilarityThreshold, cfg.Recognition.Margin, cfg.Recognition.Scale)
	debouncer := liveness.NewDebouncer(cfg.Liveness.RealThreshold, cfg.Liveness.SpoofThreshold)
	target := geometry.CenteredSquare(cfg.Kiosk.FrameWidth, cfg.Kiosk.FrameHeight, cfg.Kiosk.TargetRegionSize)

	infClient := inference.NewClient(cfg.Inference.URL)
	pipe := pipeline.New(infClient, matcher, debouncer, target)
	throttle := alerting.NewThrottle(cfg.Alerting.SpoofCooldown, cfg.Alerting.UnknownCooldown)
	snapshotter := alerting.NewSnapshotter(cfg.Alerting.ViolationsDir)

	var uploader alerting.Uploader
	if cfg.Upload.URL != "" {
		uploader = alerting.NewHTTPUploader(cfg.Upload.URL, cfg.Upload.Folder)
	} else {
		fmt.Println("Warning: UPLOAD_URL not set, violation snapshots stay local")
	}

	source := camera.NewMJPEGSource(cameraURL, cfg.Kiosk.FrameWidth, cfg.Kiosk.FrameHeight)
	defer source.Close()

	queue := make(chan worker.Recognition, recognitionQueueSize)

	frameWorker := worker.NewFrameWorker(worker.FrameWorkerConfig{
		Source:      camera.NewTickerSource(source, frameInterval),
		Detector:    infClient,
		Pipeline:    pipe,
		Throttle:    throttle,
		Snapshotter: snapshotter,
		Uploader:    uploader,
		Alerts:      logs,
		Out:         queue,
	})

	ledger := attendance.NewLedger(employees, logs, cfg.Attendance)
	ledgerWorker := worker.NewLedgerWorker(ledger, queue)

	fmt.Printf("Kiosk running: camera=%s inference=%s target=%dx%d\n",
		cameraURL, cfg.Inference.URL, target.Width(), target.Height())
	fmt.Println("Press Ctrl+C to stop")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		frameWorker.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		ledgerWorker.Run(ctx)
	}()

	<-ctx.Done()
	fmt.Println("\nShutting down...")
	wg.Wait()

	if dropped := frameWorker.Dropped(); dropped > 0 {
		fmt.Printf("Warning: %d recognitions were dropped on a full queue\n", dropped)
	}
	return nil
}
