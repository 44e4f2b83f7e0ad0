package zoho

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	commonhttp "news-intel/internal/common/http"
)

const (
	pageSize = 200
	maxPages = 50
)

type CRMClient struct {
	oauthToken string
	baseURL    string
	http       *commonhttp.Client
}

// Account is a Zoho CRM account. Relationship_Strength is a custom integer field.
type Account struct {
	ID                   string `json:"id"`
	Name                 string `json:"Account_Name"`
	RelationshipStrength int    `json:"Relationship_Strength"`
}

type lookup struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Contact struct {
	ID       string  `json:"id"`
	FullName string  `json:"Full_Name"`
	Title    string  `json:"Title"`
	Account  *lookup `json:"Account_Name"`
}

// AccountName returns the name of the linked account, if any.
func (c Contact) AccountName() string {
	if c.Account == nil {
		return ""
	}
	return c.Account.Name
}

type pageInfo struct {
	MoreRecords bool `json:"more_records"`
	Page        int  `json:"page"`
}

func NewCRMClient(baseURL, oauthToken string) *CRMClient {
	return &CRMClient{
		oauthToken: oauthToken,
		baseURL:    baseURL,
		http:       commonhttp.NewClient(30 * time.Second),
	}
}

func (c *CRMClient) headers() map[string]string {
	return map[string]string{"Authorization": "Zoho-oauthtoken " + c.oauthToken}
}

func (c *CRMClient) pageURL(module, fields string, page int) string {
	q := url.Values{}
	q.Set("fields", fields)
	q.Set("per_page", strconv.Itoa(pageSize))
	q.Set("page", strconv.Itoa(page))
	return fmt.Sprintf("%s/%s?%s", c.baseURL, module, q.Encode())
}

// ListAccounts returns every account in the order Zoho pages them.
func (c *CRMClient) ListAccounts(ctx context.Context) ([]Account, error) {
	var all []Account
	for page := 1; page <= maxPages; page++ {
		var resp struct {
			Data []Account `json:"data"`
			Info pageInfo  `json:"info"`
		}
		if err := c.http.GetJSON(ctx, "zoho accounts", c.pageURL("Accounts", "Account_Name,Relationship_Strength", page), c.headers(), &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Data...)
		if !resp.Info.MoreRecords {
			break
		}
	}
	return all, nil
}

// ListContacts returns every contact in the order Zoho pages them.
func (c *CRMClient) ListContacts(ctx context.Context) ([]Contact, error) {
	var all []Contact
	for page := 1; page <= maxPages; page++ {
		var resp struct {
			Data []Contact `json:"data"`
			Info pageInfo  `json:"info"`
		}
		if err := c.http.GetJSON(ctx, "zoho contacts", c.pageURL("Contacts", "Full_Name,Title,Account_Name", page), c.headers(), &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Data...)
		if !resp.Info.MoreRecords {
			break
		}
	}
	return all, nil
}
