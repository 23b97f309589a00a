package dto

import "github.com/collabflow/collabflow-api/internal/models"

// ReactionToggleRequest toggles one user's emoji reaction on exactly one of
// a comment, document or message.
type ReactionToggleRequest struct {
	Emoji      string  `json:"emoji" validate:"required,min=1,max=32"`
	CommentID  *string `json:"comment_id" validate:"omitempty,max=36"`
	DocumentID *string `json:"document_id" validate:"omitempty,max=36"`
	MessageID  *string `json:"message_id" validate:"omitempty,max=36"`
}

// ReactionListQuery selects the reaction target to aggregate.
type ReactionListQuery struct {
	CommentID  *string `query:"comment_id" validate:"omitempty,max=36"`
	DocumentID *string `query:"document_id" validate:"omitempty,max=36"`
	MessageID  *string `query:"message_id" validate:"omitempty,max=36"`
}

// ReactionGroup aggregates all reactions with one emoji on one target. The
// caller derives "did I react" by checking its own id against Users.
type ReactionGroup struct {
	Emoji string        `json:"emoji"`
	Count int           `json:"count"`
	Users []UserSummary `json:"users"`
}

// GroupReactions folds raw reaction rows into per-emoji aggregates. No
// ordering guarantee across emojis.
func GroupReactions(reactions []models.Reaction) []ReactionGroup {
	index := make(map[string]int, len(reactions))
	groups := make([]ReactionGroup, 0, len(reactions))

	for _, reaction := range reactions {
		at, ok := index[reaction.Emoji]
		if !ok {
			at = len(groups)
			index[reaction.Emoji] = at
			groups = append(groups, ReactionGroup{Emoji: reaction.Emoji})
		}
		groups[at].Count++
		groups[at].Users = append(groups[at].Users, NewUserSummary(reaction.User))
	}

	return groups
}
