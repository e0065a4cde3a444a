// Package nationstates is a narrow client for the parts of the
// NationStates API the bot needs: reading a nation's open issues and
// answering them. It is not a general API client.
package nationstates

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/discordplays/nationstates/helpers"
	"github.com/discordplays/nationstates/models"
	"github.com/pkg/errors"
)

const apiBase = "https://www.nationstates.net/cgi-bin/api.cgi"

// The API allows 50 requests per 30 seconds; spacing calls out is
// cheaper than handling 429s.
const minRequestSpacing = 700 * time.Millisecond

// NationControl reads and answers the issues of one nation it holds
// credentials for. Safe for use by a single job goroutine plus
// occasional command handlers.
type NationControl struct {
	nation    string
	password  string
	useragent string

	mu       sync.Mutex
	pin      string
	lastCall time.Time
}

// New builds a client for the given nation. The user agent is
// mandatory for the NationStates API.
func New(nation, password, useragent string) *NationControl {
	return &NationControl{
		nation:    NormalizeNationName(nation),
		password:  password,
		useragent: useragent,
	}
}

// NormalizeNationName converts a display nation name into API form
func NormalizeNationName(nation string) string {
	return strings.Replace(strings.ToLower(strings.TrimSpace(nation)), " ", "_", -1)
}

// Name returns the nation name in API form
func (n *NationControl) Name() string {
	return n.nation
}

func (n *NationControl) call(ctx context.Context, query url.Values) ([]byte, error) {
	n.mu.Lock()
	if wait := minRequestSpacing - time.Since(n.lastCall); wait > 0 {
		n.mu.Unlock()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		n.mu.Lock()
	}
	n.lastCall = time.Now()
	headers := make(map[string]string)
	if n.pin != "" {
		headers["X-Pin"] = n.pin
	} else if n.password != "" {
		headers["X-Password"] = n.password
	}
	n.mu.Unlock()

	body, respHeaders, err := helpers.NetGetHeaders(ctx, apiBase+"?"+query.Encode(), n.useragent, headers)
	if err != nil {
		return nil, errors.Wrap(err, "nationstates api request failed")
	}

	if pin := respHeaders.Get("X-Pin"); pin != "" {
		n.mu.Lock()
		n.pin = pin
		n.mu.Unlock()
	}
	return body, nil
}

type issuesShard struct {
	XMLName xml.Name   `xml:"NATION"`
	Issues  []issueXML `xml:"ISSUES>ISSUE"`
}

type issueXML struct {
	ID      int         `xml:"id,attr"`
	Title   string      `xml:"TITLE"`
	Text    string      `xml:"TEXT"`
	Pic1    string      `xml:"PIC1"`
	Pic2    string      `xml:"PIC2"`
	Options []optionXML `xml:"OPTION"`
}

type optionXML struct {
	ID   int    `xml:"id,attr"`
	Text string `xml:",chardata"`
}

// Issues returns the nation's currently open issues in API order.
// Always queried fresh, never cached.
func (n *NationControl) Issues(ctx context.Context) ([]models.Issue, error) {
	body, err := n.call(ctx, url.Values{
		"nation": {n.nation},
		"q":      {"issues"},
	})
	if err != nil {
		return nil, err
	}

	return parseIssuesShard(body)
}

func parseIssuesShard(body []byte) ([]models.Issue, error) {
	var shard issuesShard
	if err := xml.Unmarshal(body, &shard); err != nil {
		return nil, errors.Wrap(err, "failed to parse issues shard")
	}

	issues := make([]models.Issue, 0, len(shard.Issues))
	for _, raw := range shard.Issues {
		issue := models.Issue{
			ID:    raw.ID,
			Title: raw.Title,
			Text:  raw.Text,
		}
		for _, pic := range []string{raw.Pic1, raw.Pic2} {
			if pic != "" {
				issue.Banners = append(issue.Banners,
					"https://www.nationstates.net/images/newspaper/"+pic+"-1.jpg")
			}
		}
		for _, opt := range raw.Options {
			issue.Options = append(issue.Options, models.Option{
				Index: opt.ID,
				Text:  strings.TrimSpace(opt.Text),
			})
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

type nationShard struct {
	XMLName  xml.Name `xml:"NATION"`
	Flag     string   `xml:"FLAG"`
	FullName string   `xml:"FULLNAME"`
	Category string   `xml:"CATEGORY"`
	Notable  string   `xml:"NOTABLE"`
}

// Flag returns the nation's flag image URL
func (n *NationControl) Flag(ctx context.Context) (string, error) {
	body, err := n.call(ctx, url.Values{
		"nation": {n.nation},
		"q":      {"flag"},
	})
	if err != nil {
		return "", err
	}
	var shard nationShard
	if err := xml.Unmarshal(body, &shard); err != nil {
		return "", errors.Wrap(err, "failed to parse flag shard")
	}
	return shard.Flag, nil
}

// Description returns a short display blurb about the nation
func (n *NationControl) Description(ctx context.Context) (string, error) {
	body, err := n.call(ctx, url.Values{
		"nation": {n.nation},
		"q":      {"fullname+category+notable"},
	})
	if err != nil {
		return "", err
	}
	var shard nationShard
	if err := xml.Unmarshal(body, &shard); err != nil {
		return "", errors.Wrap(err, "failed to parse nation shard")
	}
	description := fmt.Sprintf("%s is a %s", shard.FullName, shard.Category)
	if shard.Notable != "" {
		description += ", notable for its " + shard.Notable
	}
	return description + ".", nil
}

type answerShard struct {
	XMLName xml.Name  `xml:"NATION"`
	Issue   answerXML `xml:"ISSUE"`
}

type answerXML struct {
	OK                int           `xml:"OK"`
	Desc              string        `xml:"DESC"`
	Error             string        `xml:"ERROR"`
	Rankings          []rankXML     `xml:"RANKINGS>RANK"`
	Headlines         []string      `xml:"HEADLINES>HEADLINE"`
	Reclassifications []reclassXML  `xml:"RECLASSIFICATIONS>RECLASSIFY"`
	Unlocks           []string      `xml:"UNLOCKS>BANNER"`
	NewPolicies       []policyXML   `xml:"NEW_POLICIES>POLICY"`
	RemovedPolicies   []policyXML   `xml:"REMOVED_POLICIES>POLICY"`
}

type rankXML struct {
	ID      int     `xml:"id,attr"`
	PChange float64 `xml:"PCHANGE"`
}

type reclassXML struct {
	Type string `xml:"type,attr"`
	From string `xml:"FROM"`
	To   string `xml:"TO"`
}

type policyXML struct {
	Name string `xml:"NAME"`
	Pic  string `xml:"PIC"`
	Desc string `xml:"DESC"`
}

// AcceptOption answers the issue with the given option and reports
// the resulting national changes. Dismissing uses the reserved index.
func (n *NationControl) AcceptOption(ctx context.Context, issueID int, option models.Option) (*models.IssueResult, error) {
	body, err := n.call(ctx, url.Values{
		"nation": {n.nation},
		"c":      {"issue"},
		"issue":  {strconv.Itoa(issueID)},
		"option": {strconv.Itoa(option.Index)},
	})
	if err != nil {
		return nil, err
	}

	result, unlocks, err := parseAnswerShard(body, issueID)
	if err != nil {
		return nil, err
	}
	if len(unlocks) > 0 {
		banners, err := n.bannerDetails(ctx, unlocks)
		if err != nil {
			return nil, err
		}
		result.Banners = banners
	}
	return result, nil
}

func parseAnswerShard(body []byte, issueID int) (*models.IssueResult, []string, error) {
	var shard answerShard
	if err := xml.Unmarshal(body, &shard); err != nil {
		return nil, nil, errors.Wrap(err, "failed to parse issue answer")
	}
	if shard.Issue.OK != 1 {
		return nil, nil, errors.Errorf("issue %d was not accepted: %s", issueID, strings.TrimSpace(shard.Issue.Error))
	}

	result := &models.IssueResult{
		EffectLine: strings.TrimSpace(shard.Issue.Desc),
	}
	for _, reclass := range shard.Issue.Reclassifications {
		result.Reclassifications = append(result.Reclassifications,
			fmt.Sprintf("%s was reclassified from %s to %s", reclassScale(reclass.Type), reclass.From, reclass.To))
	}
	for _, headline := range shard.Issue.Headlines {
		result.Headlines = append(result.Headlines, strings.TrimSpace(headline))
	}
	for _, rank := range shard.Issue.Rankings {
		result.Census = append(result.Census, models.CensusScaleChange{
			Title:         ScaleTitle(rank.ID),
			PercentChange: rank.PChange,
		})
	}
	for _, policy := range shard.Issue.NewPolicies {
		result.NewPolicies = append(result.NewPolicies, policyFromXML(policy))
	}
	for _, policy := range shard.Issue.RemovedPolicies {
		result.RemovedPolicies = append(result.RemovedPolicies, policyFromXML(policy))
	}
	return result, shard.Issue.Unlocks, nil
}

func policyFromXML(policy policyXML) models.Policy {
	return models.Policy{
		Name:        policy.Name,
		Description: policy.Desc,
		Banner:      "https://www.nationstates.net/images/banners/" + policy.Pic + ".jpg",
	}
}

func reclassScale(reclassType string) string {
	switch reclassType {
	case "0":
		return "Civil Rights"
	case "1":
		return "Economy"
	case "2":
		return "Political Freedom"
	default:
		return "The nation"
	}
}

type bannersShard struct {
	XMLName xml.Name    `xml:"WORLD"`
	Banners []bannerXML `xml:"BANNERS>BANNER"`
}

type bannerXML struct {
	ID       string `xml:"id,attr"`
	Name     string `xml:"NAME"`
	Validity string `xml:"VALIDITY"`
}

// bannerDetails resolves banner codes from an issue result into
// display data via the world API
func (n *NationControl) bannerDetails(ctx context.Context, ids []string) ([]models.BannerKnowledge, error) {
	body, err := n.call(ctx, url.Values{
		"q":      {"banner"},
		"banner": {strings.Join(ids, ",")},
	})
	if err != nil {
		return nil, err
	}
	var shard bannersShard
	if err := xml.Unmarshal(body, &shard); err != nil {
		return nil, errors.Wrap(err, "failed to parse banners shard")
	}
	banners := make([]models.BannerKnowledge, 0, len(shard.Banners))
	for _, banner := range shard.Banners {
		banners = append(banners, models.BannerKnowledge{
			Name:     banner.Name,
			Validity: banner.Validity,
			URL:      "https://www.nationstates.net/images/banners/" + banner.ID + ".jpg",
		})
	}
	return banners, nil
}
