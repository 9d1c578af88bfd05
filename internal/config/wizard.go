package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/util/validation"
)

// WizardResult holds the user's choices from the init wizard.
type WizardResult struct {
	Name         string
	Namespace    string
	Replicas     int
	StorageSize  string
	StorageClass string
}

// RunWizard asks for the handful of settings that differ between clusters.
func RunWizard(ctx context.Context) (*WizardResult, error) {
	result := &WizardResult{
		Name:        DefaultName,
		Namespace:   DefaultNamespace,
		Replicas:    DefaultReplicas,
		StorageSize: DefaultStorageSize,
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("StatefulSet name").
				Description("Also names the headless Service and the ConfigMap").
				Value(&result.Name).
				Validate(validateName),
			huh.NewInput().
				Title("Namespace").
				Description("Created on apply, deleted on destroy").
				Value(&result.Namespace).
				Validate(validateNamespace),
		),

		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Replicas").
				Description("Ordinal 0 is the primary, the rest replicate from it").
				Options(
					huh.NewOption("1 (primary only)", 1),
					huh.NewOption("2 (primary + 1 replica)", 2),
					huh.NewOption("3 (primary + 2 replicas)", 3),
					huh.NewOption("5 (primary + 4 replicas)", 5),
				).
				Value(&result.Replicas),
		),

		huh.NewGroup(
			huh.NewInput().
				Title("Storage per replica").
				Description("Size of each PersistentVolumeClaim").
				Value(&result.StorageSize).
				Validate(validateStorageSize),
			huh.NewInput().
				Title("StorageClass (optional)").
				Description("Leave empty to use the cluster default").
				Value(&result.StorageClass),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return nil, fmt.Errorf("wizard canceled: %w", err)
	}

	return result, nil
}

// ToConfig converts the wizard result to a defaulted Config.
func (r *WizardResult) ToConfig() *Config {
	cfg := &Config{
		Name:      strings.TrimSpace(r.Name),
		Namespace: strings.TrimSpace(r.Namespace),
		Replicas:  int32(r.Replicas), // #nosec G115 -- bounded by the select options
		Storage: StorageConfig{
			Size:         strings.TrimSpace(r.StorageSize),
			StorageClass: strings.TrimSpace(r.StorageClass),
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func validateName(s string) error {
	if msgs := validation.IsDNS1035Label(s); len(msgs) > 0 {
		return fmt.Errorf("%s", msgs[0])
	}
	if len(s) > MaxNameLength {
		return fmt.Errorf("must be at most %d characters", MaxNameLength)
	}
	return nil
}

func validateNamespace(s string) error {
	if msgs := validation.IsDNS1123Label(s); len(msgs) > 0 {
		return fmt.Errorf("%s", msgs[0])
	}
	return nil
}

func validateStorageSize(s string) error {
	q, err := resource.ParseQuantity(s)
	if err != nil {
		return fmt.Errorf("invalid quantity (expected e.g. 10Gi)")
	}
	if q.Sign() <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}
