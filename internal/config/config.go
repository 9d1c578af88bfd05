package config

// DefaultConfigFilename is the default configuration filename.
const DefaultConfigFilename = "mysqlset.yaml"

// Config describes a replicated MySQL StatefulSet deployment.
type Config struct {
	// Name is used for the StatefulSet, the headless Service and the ConfigMap.
	// The read Service is named {name}-read.
	Name string `yaml:"name"`

	// Namespace is created on apply and deleted on destroy.
	Namespace string `yaml:"namespace"`

	// Replicas is the desired number of MySQL pods. Ordinal 0 is the primary.
	Replicas int32 `yaml:"replicas"`

	Image           string `yaml:"image"`
	XtrabackupImage string `yaml:"xtrabackup_image"`
	// ClientImage runs the one-shot mysql client pods. Defaults to Image.
	ClientImage string `yaml:"client_image,omitempty"`

	// ServerIDOffset is added to the pod ordinal to form the MySQL server-id.
	// server-id 0 is reserved, so the offset must be positive.
	ServerIDOffset int `yaml:"server_id_offset"`

	Storage     StorageConfig   `yaml:"storage"`
	Resources   ResourcesConfig `yaml:"resources"`
	MySQLConfig MySQLConfig     `yaml:"mysql_config"`
	Backup      BackupConfig    `yaml:"backup,omitempty"`
}

// StorageConfig is the VolumeClaimTemplate of each replica.
type StorageConfig struct {
	Size string `yaml:"size"`
	// StorageClass selects the provisioner. Empty uses the cluster default.
	StorageClass string `yaml:"storage_class,omitempty"`
	AccessMode   string `yaml:"access_mode"`
}

// ResourcesConfig holds the resource requests of the two long-running containers.
type ResourcesConfig struct {
	MySQL      ResourceRequests `yaml:"mysql"`
	Xtrabackup ResourceRequests `yaml:"xtrabackup"`
}

// ResourceRequests are cpu and memory requests as Kubernetes quantities.
type ResourceRequests struct {
	CPU    string `yaml:"cpu"`
	Memory string `yaml:"memory"`
}

// MySQLConfig holds the conf.d snippets stored in the ConfigMap.
type MySQLConfig struct {
	// Primary is copied to conf.d on ordinal 0.
	Primary string `yaml:"primary"`
	// Replica is copied to conf.d on every other ordinal.
	Replica string `yaml:"replica"`
}

// BackupConfig points at S3-compatible object storage for dumps.
// Credentials are read from MYSQLSET_S3_ACCESS_KEY and MYSQLSET_S3_SECRET_KEY.
type BackupConfig struct {
	Bucket string `yaml:"bucket,omitempty"`
	// Endpoint of a self-hosted store. Empty uses AWS S3 in Region.
	Endpoint string `yaml:"endpoint,omitempty"`
	Region   string `yaml:"region,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
	// PathStyle addresses buckets as <endpoint>/<bucket>, as MinIO expects.
	PathStyle bool `yaml:"path_style,omitempty"`
}

// Enabled reports whether a backup bucket is configured.
func (b BackupConfig) Enabled() bool {
	return b.Bucket != ""
}

// ClientImageOrDefault returns the image used for client pods.
func (c *Config) ClientImageOrDefault() string {
	if c.ClientImage != "" {
		return c.ClientImage
	}
	return c.Image
}

// ServerID returns the MySQL server-id assigned to the pod with the given ordinal.
func (c *Config) ServerID(ordinal int) int {
	return c.ServerIDOffset + ordinal
}
