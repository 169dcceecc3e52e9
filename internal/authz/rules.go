// Package authz holds the authorization rules as pure predicate functions
// over pre-fetched facts. Rules never touch the store; handlers load the
// owner, assignee and membership facts and pass them in. A false result
// surfaces to the caller as a permission-denied error with no further
// detail.
package authz

// isMember reports whether userID appears in memberIDs
func isMember(userID string, memberIDs []string) bool {
	for _, id := range memberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// CanViewProject allows the project owner and any member
func CanViewProject(callerID, ownerID string, memberIDs []string) bool {
	return callerID == ownerID || isMember(callerID, memberIDs)
}

// CanUpdateProject allows only the project owner
func CanUpdateProject(callerID, ownerID string) bool {
	return callerID == ownerID
}

// CanDeleteProject allows only the project owner
func CanDeleteProject(callerID, ownerID string) bool {
	return callerID == ownerID
}

// CanManageMembers allows only the project owner to add or remove members
func CanManageMembers(callerID, ownerID string) bool {
	return callerID == ownerID
}

// CanViewTask allows the parent project's owner and the task's assignee
func CanViewTask(callerID, projectOwnerID string, assigneeID *string) bool {
	if callerID == projectOwnerID {
		return true
	}
	return assigneeID != nil && callerID == *assigneeID
}

// CanUpdateTask allows the parent project's owner and the task's assignee
func CanUpdateTask(callerID, projectOwnerID string, assigneeID *string) bool {
	return CanViewTask(callerID, projectOwnerID, assigneeID)
}

// CanDeleteTask allows the parent project's owner and the task's assignee
func CanDeleteTask(callerID, projectOwnerID string, assigneeID *string) bool {
	return CanViewTask(callerID, projectOwnerID, assigneeID)
}

// CanCommentOnTask allows the parent project's owner and the parent task's
// assignee
func CanCommentOnTask(callerID, projectOwnerID string, assigneeID *string) bool {
	return CanViewTask(callerID, projectOwnerID, assigneeID)
}

// CanViewComments mirrors CanCommentOnTask
func CanViewComments(callerID, projectOwnerID string, assigneeID *string) bool {
	return CanViewTask(callerID, projectOwnerID, assigneeID)
}

// CanUpdateComment allows only the comment's author
func CanUpdateComment(callerID, authorID string) bool {
	return callerID == authorID
}

// CanDeleteComment allows the comment's author and the parent project's
// owner
func CanDeleteComment(callerID, authorID, projectOwnerID string) bool {
	return callerID == authorID || callerID == projectOwnerID
}
