package manifests

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"strings"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
	"sigs.k8s.io/yaml"
)

// Bundle holds the typed objects of a rendered manifest stream.
type Bundle struct {
	ConfigMap   *corev1.ConfigMap
	Services    []*corev1.Service
	StatefulSet *appsv1.StatefulSet
}

// Decode splits a multi-document YAML stream and decodes every document into
// its typed object. Unknown kinds are rejected.
func Decode(data []byte) (*Bundle, error) {
	reader := utilyaml.NewYAMLReader(bufio.NewReader(bytes.NewReader(data)))
	bundle := &Bundle{}

	for {
		doc, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read YAML document: %w", err)
		}
		if len(bytes.TrimSpace(doc)) == 0 {
			continue
		}

		var meta metav1.TypeMeta
		if err := yaml.Unmarshal(doc, &meta); err != nil {
			return nil, fmt.Errorf("failed to decode type meta: %w", err)
		}

		switch meta.Kind {
		case "ConfigMap":
			cm := &corev1.ConfigMap{}
			if err := yaml.UnmarshalStrict(doc, cm); err != nil {
				return nil, fmt.Errorf("failed to decode ConfigMap: %w", err)
			}
			bundle.ConfigMap = cm
		case "Service":
			svc := &corev1.Service{}
			if err := yaml.UnmarshalStrict(doc, svc); err != nil {
				return nil, fmt.Errorf("failed to decode Service: %w", err)
			}
			bundle.Services = append(bundle.Services, svc)
		case "StatefulSet":
			sts := &appsv1.StatefulSet{}
			if err := yaml.UnmarshalStrict(doc, sts); err != nil {
				return nil, fmt.Errorf("failed to decode StatefulSet: %w", err)
			}
			bundle.StatefulSet = sts
		default:
			return nil, fmt.Errorf("unexpected kind %q in manifests", meta.Kind)
		}
	}

	return bundle, nil
}

// Service returns the Service with the given name, or nil.
func (b *Bundle) Service(name string) *corev1.Service {
	for _, svc := range b.Services {
		if svc.Name == name {
			return svc
		}
	}
	return nil
}

// Check verifies the cross-object invariants: every object is present, the
// StatefulSet selector matches its pod template and both Services, and the
// StatefulSet is governed by a headless Service.
func (b *Bundle) Check() error {
	var errs []error

	if b.ConfigMap == nil {
		errs = append(errs, errors.New("missing ConfigMap"))
	}
	if b.StatefulSet == nil {
		errs = append(errs, errors.New("missing StatefulSet"))
		return errors.Join(errs...)
	}

	sts := b.StatefulSet
	if sts.Spec.Selector == nil || len(sts.Spec.Selector.MatchLabels) == 0 {
		return errors.Join(append(errs, errors.New("StatefulSet has no selector"))...)
	}
	selector := sts.Spec.Selector.MatchLabels

	if !subset(selector, sts.Spec.Template.Labels) {
		errs = append(errs, errors.New("StatefulSet selector does not match pod template labels"))
	}

	headless := b.Service(sts.Spec.ServiceName)
	switch {
	case headless == nil:
		errs = append(errs, fmt.Errorf("governing Service %q not found", sts.Spec.ServiceName))
	case headless.Spec.ClusterIP != corev1.ClusterIPNone:
		errs = append(errs, fmt.Errorf("governing Service %q is not headless", headless.Name))
	}

	for _, svc := range b.Services {
		if !maps.Equal(svc.Spec.Selector, selector) {
			errs = append(errs, fmt.Errorf("Service %q selector does not match StatefulSet selector", svc.Name))
		}
	}

	if len(sts.Spec.VolumeClaimTemplates) == 0 {
		errs = append(errs, errors.New("StatefulSet has no volume claim template"))
	}

	return errors.Join(errs...)
}

// ObjectNames returns "Kind/name" for every object in apply order.
func (b *Bundle) ObjectNames() []string {
	var names []string
	if b.ConfigMap != nil {
		names = append(names, "ConfigMap/"+b.ConfigMap.Name)
	}
	for _, svc := range b.Services {
		names = append(names, "Service/"+svc.Name)
	}
	if b.StatefulSet != nil {
		names = append(names, "StatefulSet/"+b.StatefulSet.Name)
	}
	return names
}

func (b *Bundle) String() string {
	return strings.Join(b.ObjectNames(), ", ")
}

func subset(want, have map[string]string) bool {
	for k, v := range want {
		if have[k] != v {
			return false
		}
	}
	return true
}
