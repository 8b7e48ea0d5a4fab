/*
Package relation models the key/value exchanges between cooperating nodes and
the interoperability gate layered on top of them.

A relation is ready once some remote unit has advertised every required key.
Relations carrying a local spec additionally validate each ready unit's
advertised spec on every evaluation: a mismatch is a permanent
CompatibilityError requiring operator intervention, deliberately distinct
from the transient not-ready state seen during cluster bring-up.

The Hadoop role variants (NameNode, DataNode, ResourceManager, NodeManager
and their master-side views) are a single Relation type tagged with a role
and configured by constructor, not a type hierarchy. The transport behind the
Exchange interface is an external collaborator.
*/
package relation
