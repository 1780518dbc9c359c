// Package member implements the member lifecycle engine.
//
// The service layer owns all business logic for creating, editing, and
// deleting members: transactional enrollment, label normalization before
// any association write, label attach/detach event derivation, subscribe
// event log appends, and avatar derivation. It depends on the Repository
// interface defined in this package and should never import from api/.
//
// Repository implementations live in repository/postgres/.
package member
