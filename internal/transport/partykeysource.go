package transport

import "context"

// ResolvePartyKeys looks up public key material for the given party
// identifiers. Identifiers the backend does not recognize are simply
// absent from the returned slice; the builder skips them silently, per
// the PartyKeySource contract.
func (c *Client) ResolvePartyKeys(ctx context.Context, partyIDs []string) ([]PartyKeyRecord, error) {
	req := resolvePartyKeysRequest{PartyIDs: partyIDs}
	var resp resolvePartyKeysResponse
	if err := c.Do(ctx, "POST", "/parties/resolve", req, &resp); err != nil {
		return nil, err
	}
	return resp.Parties, nil
}
