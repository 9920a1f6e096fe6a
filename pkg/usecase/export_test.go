package usecase

import "github.com/secmon-lab/coffeechat/pkg/domain/model"

// Render exposes invitation rendering for tests
func (c *OutreachConfig) Render(inv model.Invitation, r model.Recipient) (string, error) {
	return c.render(inv, r)
}
