// Package entity holds the Member and Team domain objects and the MemberDto
// projection. Relationship state is kept consistent by Member.ChangeTeam.
package entity
