package dataservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/rosterd/rosterd/internal/domain"
)

// Client calls the data service's resolved-members endpoint over HTTP.
// The scheduling service uses it as its MemberSource.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
}

type resolvedGroup struct {
	GroupID   uuid.UUID      `json:"group_id"`
	GroupName string         `json:"group_name"`
	Members   []domain.Staff `json:"members"`
}

type resolvedMembersResponse struct {
	Data  []resolvedGroup `json:"data"`
	Total int             `json:"total"`
}

// ResolvedActiveStaff fetches the resolved membership of a group and
// flattens it into a deduplicated list of active staff, preserving the
// order the data service resolved them in.
func (c *Client) ResolvedActiveStaff(ctx context.Context, groupID uuid.UUID) ([]domain.Staff, error) {
	url := fmt.Sprintf("%s/api/v1/groups/%s/resolved-members", c.baseURL, groupID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build resolved-members request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call data service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("data service returned %d: %s", resp.StatusCode, body)
	}

	var payload resolvedMembersResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode resolved-members response: %w", err)
	}

	seen := make(map[uuid.UUID]struct{}, payload.Total)
	staff := make([]domain.Staff, 0, payload.Total)
	for _, group := range payload.Data {
		for _, member := range group.Members {
			if member.Status != domain.StaffActive {
				continue
			}
			if _, ok := seen[member.ID]; ok {
				continue
			}
			seen[member.ID] = struct{}{}
			staff = append(staff, member)
		}
	}
	return staff, nil
}
