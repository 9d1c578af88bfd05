package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/util/validation"
)

// MaxNameLength keeps {data}-{name}-{ordinal} claim names and the
// controller-revision-hash label of pods within the 63 character label limit.
const MaxNameLength = 52

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs []error

	if c.Name == "" {
		errs = append(errs, errors.New("name is required"))
	} else {
		if msgs := validation.IsDNS1035Label(c.Name); len(msgs) > 0 {
			errs = append(errs, fmt.Errorf("name %q is invalid: %s", c.Name, strings.Join(msgs, "; ")))
		}
		if len(c.Name) > MaxNameLength {
			errs = append(errs, fmt.Errorf("name must be at most %d characters", MaxNameLength))
		}
	}

	if c.Namespace == "" {
		errs = append(errs, errors.New("namespace is required"))
	} else if msgs := validation.IsDNS1123Label(c.Namespace); len(msgs) > 0 {
		errs = append(errs, fmt.Errorf("namespace %q is invalid: %s", c.Namespace, strings.Join(msgs, "; ")))
	}

	if c.Replicas < 1 {
		errs = append(errs, errors.New("replicas must be at least 1"))
	}
	if c.ServerIDOffset < 1 {
		errs = append(errs, errors.New("server_id_offset must be positive (server-id 0 is reserved)"))
	}

	if c.Image == "" {
		errs = append(errs, errors.New("image is required"))
	}
	if c.XtrabackupImage == "" {
		errs = append(errs, errors.New("xtrabackup_image is required"))
	}

	errs = append(errs, c.validateStorage()...)
	errs = append(errs, validateRequests("resources.mysql", c.Resources.MySQL)...)
	errs = append(errs, validateRequests("resources.xtrabackup", c.Resources.Xtrabackup)...)

	if !strings.Contains(c.MySQLConfig.Primary, "[mysqld]") {
		errs = append(errs, errors.New("mysql_config.primary must contain a [mysqld] section"))
	}
	if !strings.Contains(c.MySQLConfig.Replica, "[mysqld]") {
		errs = append(errs, errors.New("mysql_config.replica must contain a [mysqld] section"))
	}

	if c.Backup.Enabled() {
		if msgs := validation.IsDNS1123Subdomain(c.Backup.Bucket); len(msgs) > 0 {
			errs = append(errs, fmt.Errorf("backup.bucket %q is invalid: %s", c.Backup.Bucket, strings.Join(msgs, "; ")))
		}
		if c.Backup.Endpoint != "" {
			if u, err := url.Parse(c.Backup.Endpoint); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				errs = append(errs, fmt.Errorf("backup.endpoint %q must be an http or https URL", c.Backup.Endpoint))
			}
		}
	}

	return errors.Join(errs...)
}

func (c *Config) validateStorage() []error {
	var errs []error

	q, err := resource.ParseQuantity(c.Storage.Size)
	if err != nil {
		errs = append(errs, fmt.Errorf("storage.size %q is not a valid quantity: %w", c.Storage.Size, err))
	} else if q.Sign() <= 0 {
		errs = append(errs, fmt.Errorf("storage.size must be positive, got %q", c.Storage.Size))
	}

	if c.Storage.StorageClass != "" {
		if msgs := validation.IsDNS1123Subdomain(c.Storage.StorageClass); len(msgs) > 0 {
			errs = append(errs, fmt.Errorf("storage.storage_class %q is invalid: %s", c.Storage.StorageClass, strings.Join(msgs, "; ")))
		}
	}

	switch corev1.PersistentVolumeAccessMode(c.Storage.AccessMode) {
	case corev1.ReadWriteOnce, corev1.ReadWriteOncePod, corev1.ReadWriteMany:
	default:
		errs = append(errs, fmt.Errorf("storage.access_mode must be one of ReadWriteOnce, ReadWriteOncePod, ReadWriteMany, got %q", c.Storage.AccessMode))
	}

	return errs
}

func validateRequests(field string, r ResourceRequests) []error {
	var errs []error
	if _, err := resource.ParseQuantity(r.CPU); err != nil {
		errs = append(errs, fmt.Errorf("%s.cpu %q is not a valid quantity: %w", field, r.CPU, err))
	}
	if _, err := resource.ParseQuantity(r.Memory); err != nil {
		errs = append(errs, fmt.Errorf("%s.memory %q is not a valid quantity: %w", field, r.Memory, err))
	}
	return errs
}
