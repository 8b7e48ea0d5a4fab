package relation

import (
	"github.com/cloudbrew/hadoopctl/pkg/errdefs"
	"github.com/cloudbrew/hadoopctl/pkg/log"
	"github.com/cloudbrew/hadoopctl/pkg/spec"
)

// Exchange is the abstract cross-node metadata transport: a key/value bag per
// remote unit, plus a way to advertise this node's own bag. The concrete
// transport is an external collaborator and not modeled here.
type Exchange interface {
	// Units returns the currently known remote units on a relation together
	// with their advertised data. Units with no data yet appear with an
	// empty bag.
	Units(relation string) ([]Unit, error)

	// Publish advertises this node's data bag on a relation.
	Publish(relation string, data map[string]string) error
}

// Unit is one remote unit's advertised data.
type Unit struct {
	Name string
	Data map[string]string
}

// Role tags which side of a relation this node plays.
type Role string

const (
	RoleProvider Role = "provider"
	RoleConsumer Role = "consumer"
)

// SpecSource supplies the local interoperability spec at evaluation time. It
// is a callback rather than a value because the Java version only lands in
// the state store during the same invocation that installs Java; a nil spec
// means "nothing known yet".
type SpecSource func() spec.Spec

// Relation is one named key/value exchange with cooperating units. Variants
// for the individual Hadoop roles are built by the constructors in roles.go;
// they differ only in name, role tag, required keys, and the data they
// advertise, not in behavior.
type Relation struct {
	Name         string
	Role         Role
	RequiredKeys []string

	exchange  Exchange
	localSpec SpecSource
	baseData  map[string]string
	readyData map[string]string
	gate      func() error
}

// requiredOf reports whether a unit's bag carries every required key,
// including the spec field when spec matching is in force.
func (r *Relation) requiredOf(u Unit) bool {
	for _, key := range r.requiredKeys() {
		if _, present := u.Data[key]; !present {
			return false
		}
	}
	return true
}

func (r *Relation) requiredKeys() []string {
	keys := r.RequiredKeys
	if r.spec() != nil {
		keys = append(append([]string(nil), keys...), "spec")
	}
	return keys
}

func (r *Relation) spec() spec.Spec {
	if r.localSpec == nil {
		return nil
	}
	s := r.localSpec()
	if len(s) == 0 {
		return nil
	}
	return s
}

// ReadyUnits returns the remote units whose bags carry all required keys.
func (r *Relation) ReadyUnits() ([]Unit, error) {
	units, err := r.exchange.Units(r.Name)
	if err != nil {
		return nil, err
	}
	var ready []Unit
	for _, u := range units {
		if r.requiredOf(u) {
			ready = append(ready, u)
		}
	}
	return ready, nil
}

// IsReady reports whether at least one remote unit has advertised all
// required keys. When a local spec is set, every ready unit's advertised spec
// is additionally validated against it on every call: a mismatch is a
// permanent errdefs.CompatibilityError, deliberately distinct from the
// transient "no data yet" false return.
func (r *Relation) IsReady() (bool, error) {
	ready, err := r.ReadyUnits()
	if err != nil {
		return false, err
	}
	if len(ready) == 0 {
		return false, nil
	}

	local := r.spec()
	if local == nil {
		return true, nil
	}
	for _, u := range ready {
		remote, err := spec.Decode(u.Data["spec"])
		if err != nil {
			return false, errdefs.NewCompatibilityError(u.Name, "spec", "valid JSON", u.Data["spec"])
		}
		if key, mismatched := spec.Mismatch(local, remote); mismatched {
			relLog := log.WithRelation(r.Name)
			relLog.Error().
				Str("unit", u.Name).
				Str("key", key).
				Msg("Spec mismatch with related unit")
			return false, errdefs.NewCompatibilityError(u.Name, key, local[key], remote[key])
		}
	}
	return true, nil
}

// Data builds the bag this node advertises. Fields gated on cluster
// readiness (ready flags, ports) are only included when allReady is true; a
// configured readiness gate (such as waiting for HDFS to settle) runs first
// and its failure aborts the publication.
func (r *Relation) Data(allReady bool) (map[string]string, error) {
	out := make(map[string]string, len(r.baseData)+len(r.readyData)+1)
	for k, v := range r.baseData {
		out[k] = v
	}
	if local := r.spec(); local != nil {
		encoded, err := local.Encode()
		if err != nil {
			return nil, err
		}
		out["spec"] = encoded
	}
	if allReady {
		if r.gate != nil {
			if err := r.gate(); err != nil {
				return nil, err
			}
		}
		for k, v := range r.readyData {
			out[k] = v
		}
	}
	return out, nil
}

// Publish advertises this node's bag on the relation.
func (r *Relation) Publish(allReady bool) error {
	data, err := r.Data(allReady)
	if err != nil {
		return err
	}
	return r.exchange.Publish(r.Name, data)
}
