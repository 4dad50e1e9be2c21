package models

// ClientStatus je status klijenta: jedna od faza workflow-a ili terminalni
// "Active" / "Drop".
type ClientStatus string

const (
	ClientActive ClientStatus = "Active"
	ClientDrop   ClientStatus = "Drop"
)

type Client struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	BusinessName   string       `json:"businessName"`
	PackageTier    string       `json:"packageTier"`
	Email          string       `json:"email"`
	Phone          string       `json:"phone,omitempty"`
	Status         ClientStatus `json:"status"`
	JoinedAt       int64        `json:"joinedAt"`
	TotalTimeSpent float64      `json:"totalTimeSpent"`
	Requirements   []string     `json:"requirements"`
	Addons         []string     `json:"addons"`
}

// Clone pravi kopiju klijenta sa sopstvenim listama.
func (c *Client) Clone() *Client {
	n := *c
	n.Requirements = append([]string(nil), c.Requirements...)
	n.Addons = append([]string(nil), c.Addons...)
	return &n
}
