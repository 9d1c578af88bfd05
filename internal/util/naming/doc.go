// Package naming provides consistent naming functions for the objects of a
// MySQL StatefulSet deployment.
//
// StatefulSet pods are named {set}-{ordinal} and their claims
// {template}-{set}-{ordinal}; the headless Service gives each pod the stable
// DNS name {set}-{ordinal}.{service}. These helpers build and parse those
// names so the rest of the code never concatenates them by hand.
package naming
