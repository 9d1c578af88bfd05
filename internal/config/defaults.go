package config

// Default values.
const (
	DefaultName            = "mysql"
	DefaultNamespace       = "mysql"
	DefaultReplicas        = 3
	DefaultImage           = "mysql:5.7"
	DefaultXtrabackupImage = "gcr.io/google-samples/xtrabackup:1.0"
	DefaultServerIDOffset  = 100
	DefaultStorageSize     = "10Gi"
	DefaultAccessMode      = "ReadWriteOnce"
	DefaultBackupRegion    = "us-east-1"

	DefaultPrimaryConfig = "# Apply this config only on the primary.\n[mysqld]\nlog-bin\n"
	DefaultReplicaConfig = "# Apply this config only on replicas.\n[mysqld]\nsuper-read-only\n"
)

// Default returns a configuration with every field at its default value.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills in every unset field, treating zero counts as unset.
func (c *Config) ApplyDefaults() {
	if c.Replicas == 0 {
		c.Replicas = DefaultReplicas
	}
	if c.ServerIDOffset == 0 {
		c.ServerIDOffset = DefaultServerIDOffset
	}
	c.applyTextDefaults()
}

// applyTextDefaults fills in every unset string field.
func (c *Config) applyTextDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Namespace == "" {
		c.Namespace = DefaultNamespace
	}
	if c.Image == "" {
		c.Image = DefaultImage
	}
	if c.XtrabackupImage == "" {
		c.XtrabackupImage = DefaultXtrabackupImage
	}
	if c.Storage.Size == "" {
		c.Storage.Size = DefaultStorageSize
	}
	if c.Storage.AccessMode == "" {
		c.Storage.AccessMode = DefaultAccessMode
	}

	defaultRequests(&c.Resources.MySQL, "500m", "1Gi")
	defaultRequests(&c.Resources.Xtrabackup, "100m", "100Mi")

	if c.MySQLConfig.Primary == "" {
		c.MySQLConfig.Primary = DefaultPrimaryConfig
	}
	if c.MySQLConfig.Replica == "" {
		c.MySQLConfig.Replica = DefaultReplicaConfig
	}

	if c.Backup.Enabled() && c.Backup.Region == "" {
		c.Backup.Region = DefaultBackupRegion
	}
}

func defaultRequests(r *ResourceRequests, cpu, memory string) {
	if r.CPU == "" {
		r.CPU = cpu
	}
	if r.Memory == "" {
		r.Memory = memory
	}
}
