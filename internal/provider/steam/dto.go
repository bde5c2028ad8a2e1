package steam

import "encoding/json"

// appDetailsResponse is the store appdetails answer, keyed by app id
type appDetailsResponse map[string]struct {
	Success bool       `json:"success"`
	Data    appDetails `json:"data"`
}

type appDetails struct {
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	AppID       int      `json:"steam_appid"`
	HeaderImage string   `json:"header_image"`
	Website     string   `json:"website"`
	Publishers  []string `json:"publishers"`
	DLC         []int    `json:"dlc"`
}

// cmdInfoResponse is the steamcmd info answer, keyed by app id
type cmdInfoResponse struct {
	Status string             `json:"status"`
	Data   map[string]cmdInfo `json:"data"`
}

type cmdInfo struct {
	Common   cmdCommon                  `json:"common"`
	Extended cmdExtended                `json:"extended"`
	Depots   map[string]json.RawMessage `json:"depots"`
}

type cmdCommon struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Icon string `json:"icon"`
}

type cmdExtended struct {
	Publisher string `json:"publisher"`
	ListOfDLC string `json:"listofdlc"`
}

// cmdDepot is the part of a depot entry that names its owning add-on
type cmdDepot struct {
	DLCAppID string `json:"dlcappid"`
}
