package recognition

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// galleryFile is the on-disk gallery layout: three parallel lists produced by
// the enrollment step.
type galleryFile struct {
	IDs        []string    `yaml:"id"`
	Names      []string    `yaml:"name"`
	Embeddings [][]float32 `yaml:"encoding"`
}

// LoadGallery reads the identity gallery from a YAML file. A missing or
// inconsistent file is an error; the kiosk cannot run without a consistent
// (possibly empty) gallery.
func LoadGallery(path string) ([]Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading gallery file: %w", err)
	}

	var file galleryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing gallery file %s: %w", path, err)
	}

	if len(file.IDs) != len(file.Names) || len(file.IDs) != len(file.Embeddings) {
		return nil, fmt.Errorf("gallery file %s: id/name/encoding lists have mismatched lengths (%d/%d/%d)",
			path, len(file.IDs), len(file.Names), len(file.Embeddings))
	}

	seen := make(map[string]struct{}, len(file.IDs))
	dim := 0
	identities := make([]Identity, 0, len(file.IDs))

	for i := range file.IDs {
		id := file.IDs[i]
		if id == "" {
			return nil, fmt.Errorf("gallery file %s: entry %d has empty id", path, i)
		}
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("gallery file %s: duplicate id %q", path, id)
		}
		seen[id] = struct{}{}

		emb := file.Embeddings[i]
		if len(emb) == 0 {
			return nil, fmt.Errorf("gallery file %s: entry %q has empty embedding", path, id)
		}
		if dim == 0 {
			dim = len(emb)
		} else if len(emb) != dim {
			return nil, fmt.Errorf("gallery file %s: entry %q has dimension %d, expected %d",
				path, id, len(emb), dim)
		}

		identities = append(identities, Identity{
			UserID:    id,
			Name:      file.Names[i],
			Embedding: emb,
		})
	}

	return identities, nil
}

// SaveGallery writes the gallery back to its YAML file, preserving the
// parallel-list layout that LoadGallery reads.
func SaveGallery(path string, identities []Identity) error {
	file := galleryFile{
		IDs:        make([]string, len(identities)),
		Names:      make([]string, len(identities)),
		Embeddings: make([][]float32, len(identities)),
	}
	for i, ident := range identities {
		file.IDs[i] = ident.UserID
		file.Names[i] = ident.Name
		file.Embeddings[i] = ident.Embedding
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("marshaling gallery: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing gallery file: %w", err)
	}
	return nil
}

// MeanEmbedding averages several embeddings of the same person into the
// single gallery embedding used for matching.
func MeanEmbedding(embeddings []Embedding) (Embedding, error) {
	if len(embeddings) == 0 {
		return nil, errors.New("no embeddings to average")
	}

	dim := len(embeddings[0])
	sums := make([]float64, dim)
	for _, emb := range embeddings {
		if len(emb) != dim {
			return nil, fmt.Errorf("embedding dimension mismatch: %d vs %d", len(emb), dim)
		}
		for i, v := range emb {
			sums[i] += float64(v)
		}
	}

	mean := make(Embedding, dim)
	n := float64(len(embeddings))
	for i, s := range sums {
		mean[i] = float32(s / n)
	}
	return mean, nil
}
