package k8s

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/yaml"
	"k8s.io/client-go/dynamic"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// ApplyManifests applies multi-document YAML using Server-Side Apply.
// Each document in the YAML is parsed and applied separately.
// Empty documents are skipped.
func (c *client) ApplyManifests(ctx context.Context, manifests []byte, fieldManager string) error {
	objects, err := decodeManifests(manifests)
	if err != nil {
		return err
	}

	logger := log.FromContext(ctx)
	for _, obj := range objects {
		if err := c.applyObject(ctx, obj, fieldManager); err != nil {
			return fmt.Errorf("failed to apply %s %s/%s: %w", obj.GetKind(), obj.GetNamespace(), obj.GetName(), err)
		}
		logger.V(1).Info("applied object", "kind", obj.GetKind(), "namespace", obj.GetNamespace(), "name", obj.GetName())
	}

	return nil
}

// DeleteManifests deletes the objects of a multi-document YAML stream in
// reverse order.
func (c *client) DeleteManifests(ctx context.Context, manifests []byte) error {
	objects, err := decodeManifests(manifests)
	if err != nil {
		return err
	}

	logger := log.FromContext(ctx)
	for i := len(objects) - 1; i >= 0; i-- {
		obj := objects[i]
		deleted, err := c.deleteObject(ctx, obj)
		if err != nil {
			return fmt.Errorf("failed to delete %s %s/%s: %w", obj.GetKind(), obj.GetNamespace(), obj.GetName(), err)
		}
		if deleted {
			logger.V(1).Info("deleted object", "kind", obj.GetKind(), "namespace", obj.GetNamespace(), "name", obj.GetName())
		}
	}

	return nil
}

func decodeManifests(manifests []byte) ([]*unstructured.Unstructured, error) {
	decoder := yaml.NewYAMLOrJSONDecoder(bytes.NewReader(manifests), 4096)

	var objects []*unstructured.Unstructured
	for docIndex := 0; ; docIndex++ {
		var obj unstructured.Unstructured
		if err := decoder.Decode(&obj); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode manifest document %d: %w", docIndex, err)
		}

		// Skip empty documents (common in multi-doc YAML)
		if len(obj.Object) == 0 {
			continue
		}
		objects = append(objects, &obj)
	}

	return objects, nil
}

// resourceFor maps the object to its dynamic resource interface.
func (c *client) resourceFor(obj *unstructured.Unstructured) (dynamic.ResourceInterface, error) {
	gvk := obj.GroupVersionKind()
	if gvk.Kind == "" {
		return nil, fmt.Errorf("object has no kind set")
	}

	mapping, err := c.mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to get REST mapping for %v: %w", gvk, err)
	}

	resource := c.dynamicClient.Resource(mapping.Resource)
	if mapping.Scope.Name() != meta.RESTScopeNameNamespace {
		return resource, nil
	}

	namespace := obj.GetNamespace()
	if namespace == "" {
		namespace = "default"
	}
	return resource.Namespace(namespace), nil
}

// applyObject applies a single unstructured object using Server-Side Apply.
func (c *client) applyObject(ctx context.Context, obj *unstructured.Unstructured, fieldManager string) error {
	resource, err := c.resourceFor(obj)
	if err != nil {
		return err
	}

	data, err := obj.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal object to JSON: %w", err)
	}

	force := true
	opts := metav1.PatchOptions{
		FieldManager: fieldManager,
		Force:        &force,
	}

	err = c.withRetry(ctx, func() error {
		_, err := resource.Patch(ctx, obj.GetName(), types.ApplyPatchType, data, opts)
		return err
	})
	if err != nil {
		return fmt.Errorf("server-side apply failed: %w", err)
	}

	return nil
}

// deleteObject deletes a single object, reporting whether it existed.
func (c *client) deleteObject(ctx context.Context, obj *unstructured.Unstructured) (bool, error) {
	resource, err := c.resourceFor(obj)
	if err != nil {
		return false, err
	}

	propagation := metav1.DeletePropagationBackground
	opts := metav1.DeleteOptions{PropagationPolicy: &propagation}

	err = c.withRetry(ctx, func() error {
		return resource.Delete(ctx, obj.GetName(), opts)
	})
	if apierrors.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
