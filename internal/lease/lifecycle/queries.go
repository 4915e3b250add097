package lifecycle

import "fleetlease/internal/domain/lease"

// SigningRole reports which role the actor may currently sign as, or
// RoleNone when the actor has no pending signature.
func SigningRole(a *lease.Agreement, actor Actor) Role {
	if a.IsTerminal() {
		return RoleNone
	}

	switch RoleOf(a, actor) {
	case RoleLessor:
		if a.LessorSignature == nil {
			return RoleLessor
		}
	case RoleLessee:
		if a.LesseeSignature == nil && a.LessorSignature != nil {
			return RoleLessee
		}
	}
	return RoleNone
}

// CannotSignReason explains why the actor cannot sign right now, or ""
// when signing is currently open to them.
func CannotSignReason(a *lease.Agreement, actor Actor) string {
	if a.IsTerminal() {
		return "this agreement is " + string(a.Status) + " and can no longer be signed"
	}

	switch RoleOf(a, actor) {
	case RoleLessor:
		if a.LessorSignature != nil {
			return "you have already signed this agreement"
		}
		return ""
	case RoleLessee:
		if a.LesseeSignature != nil {
			return "you have already signed this agreement"
		}
		if a.LessorSignature == nil {
			return "the lessor must sign first"
		}
		return ""
	default:
		return "you are not a signing party to this agreement"
	}
}

// WaitingMessage tells a party who already signed what they are waiting
// for, or "" when nothing is pending on the other side.
func WaitingMessage(a *lease.Agreement, actor Actor) string {
	if a.IsTerminal() {
		return ""
	}

	switch RoleOf(a, actor) {
	case RoleLessor:
		if a.LessorSignature != nil && a.LesseeSignature == nil {
			return "you have signed; waiting on the lessee's signature"
		}
	case RoleLessee:
		if a.LesseeSignature != nil && !a.Payment.MatchFeePaid && a.Status == lease.StatusSigned {
			return "both parties have signed; the match fee is due before the trip can start"
		}
	}
	return ""
}
