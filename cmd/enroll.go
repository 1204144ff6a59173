package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/tranvd/attendance-kiosk/internal/config"
	"github.com/tranvd/attendance-kiosk/internal/inference"
	"github.com/tranvd/attendance-kiosk/internal/pipeline"
	"github.com/tranvd/attendance-kiosk/internal/recognition"
	"github.com/tranvd/attendance-kiosk/internal/store"
	"github.com/tranvd/attendance-kiosk/internal/store/postgres"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <employee-id> <photo-dir>",
	Short: "Enroll an employee from a directory of photos",
	Long: `Enroll an employee: detect the face in each photo, average the
embeddings into a single gallery embedding, and store the employee record.
With DATABASE_URL set the record goes to PostgreSQL; otherwise the gallery
YAML file is updated.`,
	Args: cobra.ExactArgs(2),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("name", "", "Employee name (required)")
	enrollCmd.Flags().String("major", "", "Employee major/department")
	enrollCmd.Flags().Int("age", 0, "Employee age")
	enrollCmd.Flags().String("email", "", "Employee email")
	enrollCmd.Flags().String("phone", "", "Employee phone number")
	enrollCmd.Flags().String("role", "staff", "Employee role")
	enrollCmd.MarkFlagRequired("name")
}

// isImageFile reports whether the file looks like a photo by extension.
func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// collectPhotos lists the image files in a directory.
func collectPhotos(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading photo directory: %w", err)
	}

	var photos []string
	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}
		photos = append(photos, filepath.Join(dir, entry.Name()))
	}
	if len(photos) == 0 {
		return nil, fmt.Errorf("no photos found in %s", dir)
	}
	return photos, nil
}

// embedPhotos runs face detection on each photo and collects one embedding
// per photo. Photos with no face or multiple faces are skipped with a
// warning.
func embedPhotos(ctx context.Context, client *inference.Client, photos []string) ([]recognition.Embedding, error) {
	bar := progressbar.NewOptions(len(photos),
		progressbar.OptionSetDescription("Embedding faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	var embeddings []recognition.Embedding
	for _, photo := range photos {
		data, err := os.ReadFile(photo)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", photo, err)
		}

		detections, err := client.Detect(ctx, pipeline.Frame{Data: data})
		if err != nil {
			return nil, fmt.Errorf("detecting face in %s: %w", photo, err)
		}

		switch len(detections) {
		case 0:
			fmt.Printf("\nWarning: no face found in %s, skipping\n", photo)
		case 1:
			embeddings = append(embeddings, detections[0].Embedding)
		default:
			fmt.Printf("\nWarning: %d faces found in %s, skipping\n", len(detections), photo)
		}

		bar.Add(1)
	}
	fmt.Println()

	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no usable face embeddings, enrollment aborted")
	}
	return embeddings, nil
}

// saveToGalleryFile upserts the identity into the gallery YAML file.
func saveToGalleryFile(path string, ident recognition.Identity) error {
	var identities []recognition.Identity
	if _, err := os.Stat(path); err == nil {
		identities, err = recognition.LoadGallery(path)
		if err != nil {
			return err
		}
	}

	replaced := false
	for i := range identities {
		if identities[i].UserID == ident.UserID {
			identities[i] = ident
			replaced = true
			break
		}
	}
	if !replaced {
		identities = append(identities, ident)
	}

	return recognition.SaveGallery(path, identities)
}

func runEnroll(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	employeeID, photoDir := args[0], args[1]
	name := mustGetString(cmd, "name")

	photos, err := collectPhotos(photoDir)
	if err != nil {
		return err
	}
	fmt.Printf("Enrolling %s (%s) from %d photos\n", name, employeeID, len(photos))

	ctx := context.Background()
	client := inference.NewClient(cfg.Inference.URL)

	embeddings, err := embedPhotos(ctx, client, photos)
	if err != nil {
		return err
	}

	mean, err := recognition.MeanEmbedding(embeddings)
	if err != nil {
		return fmt.Errorf("averaging embeddings: %w", err)
	}

	if cfg.Database.URL == "" {
		ident := recognition.Identity{UserID: employeeID, Name: name, Embedding: mean}
		if err := saveToGalleryFile(cfg.Recognition.GalleryPath, ident); err != nil {
			return err
		}
		fmt.Printf("Enrolled %s in %s (%d photos used)\n", employeeID, cfg.Recognition.GalleryPath, len(embeddings))
		return nil
	}

	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	employee := &store.Employee{
		ID:          employeeID,
		Name:        name,
		Major:       mustGetString(cmd, "major"),
		Age:         mustGetInt(cmd, "age"),
		Email:       mustGetString(cmd, "email"),
		PhoneNumber: mustGetString(cmd, "phone"),
		Role:        mustGetString(cmd, "role"),
		Embedding:   mean,
	}

	if err := postgres.NewEmployeeRepository(pool).Add(ctx, employee); err != nil {
		return fmt.Errorf("storing employee: %w", err)
	}

	fmt.Printf("Enrolled %s (%d photos used)\n", employeeID, len(embeddings))
	return nil
}
