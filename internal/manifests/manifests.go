package manifests

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/imamik/mysqlset/internal/config"
	"github.com/imamik/mysqlset/internal/util/labels"
	"github.com/imamik/mysqlset/internal/util/naming"
)

//go:embed templates/*.yaml
var templatesFS embed.FS

const templatesDir = "templates"

// Ports exposed by the MySQL pods.
const (
	MySQLPort      = 3306
	XtrabackupPort = 3307
)

// Data is the template input derived from a Config.
type Data struct {
	Name                string
	Namespace           string
	ConfigMapName       string
	HeadlessServiceName string
	ReadServiceName     string
	PrimaryHost         string
	DataVolume          string

	Replicas       int32
	ServerIDOffset int

	Image           string
	XtrabackupImage string

	Port           int
	XtrabackupPort int

	Labels     map[string]string
	ReadLabels map[string]string
	PodLabels  map[string]string
	Selector   map[string]string

	MySQLRequests      config.ResourceRequests
	XtrabackupRequests config.ResourceRequests

	StorageSize  string
	StorageClass string
	AccessMode   string

	PrimaryConfig string
	ReplicaConfig string
}

// NewData builds the template input for cfg.
func NewData(cfg *config.Config) Data {
	return Data{
		Name:                cfg.Name,
		Namespace:           cfg.Namespace,
		ConfigMapName:       naming.ConfigMap(cfg.Name),
		HeadlessServiceName: naming.HeadlessService(cfg.Name),
		ReadServiceName:     naming.ReadService(cfg.Name),
		PrimaryHost:         naming.PrimaryHost(cfg.Name),
		DataVolume:          naming.DataVolume,

		Replicas:       cfg.Replicas,
		ServerIDOffset: cfg.ServerIDOffset,

		Image:           cfg.Image,
		XtrabackupImage: cfg.XtrabackupImage,

		Port:           MySQLPort,
		XtrabackupPort: XtrabackupPort,

		Labels:     labels.Common(cfg.Name),
		ReadLabels: labels.NewLabelBuilder(cfg.Name).WithInstance(cfg.Name).WithReadOnly().Build(),
		PodLabels:  labels.NewLabelBuilder(cfg.Name).WithInstance(cfg.Name).WithComponent(labels.ComponentDatabase).Build(),
		Selector:   labels.Selector(cfg.Name),

		MySQLRequests:      cfg.Resources.MySQL,
		XtrabackupRequests: cfg.Resources.Xtrabackup,

		StorageSize:  cfg.Storage.Size,
		StorageClass: cfg.Storage.StorageClass,
		AccessMode:   cfg.Storage.AccessMode,

		PrimaryConfig: cfg.MySQLConfig.Primary,
		ReplicaConfig: cfg.MySQLConfig.Replica,
	}
}

// Files returns the template file names in apply order.
func Files() ([]string, error) {
	entries, err := templatesFS.ReadDir(templatesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest templates: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !isManifestFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Render renders every manifest for cfg into one multi-document YAML stream
// and checks that the result decodes into consistent typed objects.
func Render(cfg *config.Config) ([]byte, error) {
	names, err := Files()
	if err != nil {
		return nil, err
	}

	data := NewData(cfg)
	var combined bytes.Buffer
	for _, name := range names {
		processed, err := renderTemplate(name, data)
		if err != nil {
			return nil, err
		}
		appendYAML(&combined, processed)
	}

	if combined.Len() == 0 {
		return nil, fmt.Errorf("no YAML manifests found in %s", templatesDir)
	}

	bundle, err := Decode(combined.Bytes())
	if err != nil {
		return nil, fmt.Errorf("rendered manifests are invalid: %w", err)
	}
	if err := bundle.Check(); err != nil {
		return nil, fmt.Errorf("rendered manifests are inconsistent: %w", err)
	}

	return combined.Bytes(), nil
}

// RenderFile renders a single template, e.g. "statefulset.yaml".
func RenderFile(cfg *config.Config, name string) ([]byte, error) {
	out, err := renderTemplate(name, NewData(cfg))
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

func renderTemplate(name string, data Data) (string, error) {
	content, err := templatesFS.ReadFile(path.Join(templatesDir, name))
	if err != nil {
		return "", fmt.Errorf("failed to read manifest file %s: %w", name, err)
	}

	tmpl, err := template.New(name).Funcs(funcMap).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}

var funcMap = template.FuncMap{
	"indent": indent,
	"quote":  strconv.Quote,
}

// indent prefixes every line of s with n spaces. A trailing newline is dropped
// so the result can sit under a YAML block scalar.
func indent(n int, s string) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		lines[i] = pad + line
	}
	return strings.Join(lines, "\n")
}

func isManifestFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

func appendYAML(buffer *bytes.Buffer, content string) {
	if buffer.Len() > 0 {
		buffer.WriteString("\n---\n")
	}
	buffer.WriteString(strings.TrimRight(content, "\n"))
	buffer.WriteString("\n")
}
