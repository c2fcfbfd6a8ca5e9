package ptero

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Static errors for err113 compliance.
var (
	ErrUnknownRoute    = errors.New("unknown route")
	ErrRouteParamCount = errors.New("wrong number of route parameters")
	ErrEmptyRouteParam = errors.New("route parameter is empty")
)

// RouteKind identifies one logical operation of the panel API.
type RouteKind int

// Application API routes.
const (
	RouteListUsers RouteKind = iota
	RouteGetUser
	RouteGetUserByExternalID
	RouteCreateUser
	RouteUpdateUser
	RouteDeleteUser

	RouteListServers
	RouteGetServer
	RouteGetServerByExternalID
	RouteCreateServer
	RouteUpdateServerDetails
	RouteUpdateServerBuild
	RouteUpdateServerStartup
	RouteSuspendServer
	RouteUnsuspendServer
	RouteReinstallServer
	RouteDeleteServer
	RouteForceDeleteServer

	RouteListNodes
	RouteGetNode
	RouteGetNodeConfiguration
	RouteCreateNode
	RouteUpdateNode
	RouteDeleteNode

	RouteListAllocations
	RouteCreateAllocations
	RouteDeleteAllocation

	RouteListLocations
	RouteGetLocation
	RouteCreateLocation
	RouteUpdateLocation
	RouteDeleteLocation

	RouteListNests
	RouteGetNest
	RouteListEggs
	RouteGetEgg
)

// Client API routes.
const (
	RouteListClientServers RouteKind = iota + RouteGetEgg + 1
	RouteGetClientServer
	RouteGetServerWebSocket
	RouteGetServerResources
	RouteSendServerCommand
	RouteSetServerPowerState

	RouteGetAccount
	RouteGetTwoFactor
	RouteEnableTwoFactor
	RouteDisableTwoFactor
	RouteUpdateEmail
	RouteUpdatePassword
	RouteListAPIKeys
	RouteCreateAPIKey
	RouteDeleteAPIKey

	RouteListDatabases
	RouteCreateDatabase
	RouteRotateDatabasePassword
	RouteDeleteDatabase

	RouteListFiles
	RouteGetFileContents
	RouteDownloadFile

	RouteListBackups
	RouteCreateBackup
	RouteGetBackup
	RouteDownloadBackup
	RouteDeleteBackup

	routeKindCount
)

type routeDef struct {
	name     string
	method   string
	template string
}

const (
	applicationPrefix = "/api/application"
	clientPrefix      = "/api/client"
)

// routeTable is the fixed method and path template of every route.
var routeTable = map[RouteKind]routeDef{
	RouteListUsers:           {"ListUsers", http.MethodGet, applicationPrefix + "/users"},
	RouteGetUser:             {"GetUser", http.MethodGet, applicationPrefix + "/users/{user}"},
	RouteGetUserByExternalID: {"GetUserByExternalID", http.MethodGet, applicationPrefix + "/users/external/{external_id}"},
	RouteCreateUser:          {"CreateUser", http.MethodPost, applicationPrefix + "/users"},
	RouteUpdateUser:          {"UpdateUser", http.MethodPatch, applicationPrefix + "/users/{user}"},
	RouteDeleteUser:          {"DeleteUser", http.MethodDelete, applicationPrefix + "/users/{user}"},

	RouteListServers:           {"ListServers", http.MethodGet, applicationPrefix + "/servers"},
	RouteGetServer:             {"GetServer", http.MethodGet, applicationPrefix + "/servers/{server}"},
	RouteGetServerByExternalID: {"GetServerByExternalID", http.MethodGet, applicationPrefix + "/servers/external/{external_id}"},
	RouteCreateServer:          {"CreateServer", http.MethodPost, applicationPrefix + "/servers"},
	RouteUpdateServerDetails:   {"UpdateServerDetails", http.MethodPatch, applicationPrefix + "/servers/{server}/details"},
	RouteUpdateServerBuild:     {"UpdateServerBuild", http.MethodPatch, applicationPrefix + "/servers/{server}/build"},
	RouteUpdateServerStartup:   {"UpdateServerStartup", http.MethodPatch, applicationPrefix + "/servers/{server}/startup"},
	RouteSuspendServer:         {"SuspendServer", http.MethodPost, applicationPrefix + "/servers/{server}/suspend"},
	RouteUnsuspendServer:       {"UnsuspendServer", http.MethodPost, applicationPrefix + "/servers/{server}/unsuspend"},
	RouteReinstallServer:       {"ReinstallServer", http.MethodPost, applicationPrefix + "/servers/{server}/reinstall"},
	RouteDeleteServer:          {"DeleteServer", http.MethodDelete, applicationPrefix + "/servers/{server}"},
	RouteForceDeleteServer:     {"ForceDeleteServer", http.MethodDelete, applicationPrefix + "/servers/{server}/force"},

	RouteListNodes:            {"ListNodes", http.MethodGet, applicationPrefix + "/nodes"},
	RouteGetNode:              {"GetNode", http.MethodGet, applicationPrefix + "/nodes/{node}"},
	RouteGetNodeConfiguration: {"GetNodeConfiguration", http.MethodGet, applicationPrefix + "/nodes/{node}/configuration"},
	RouteCreateNode:           {"CreateNode", http.MethodPost, applicationPrefix + "/nodes"},
	RouteUpdateNode:           {"UpdateNode", http.MethodPatch, applicationPrefix + "/nodes/{node}"},
	RouteDeleteNode:           {"DeleteNode", http.MethodDelete, applicationPrefix + "/nodes/{node}"},

	RouteListAllocations:   {"ListAllocations", http.MethodGet, applicationPrefix + "/nodes/{node}/allocations"},
	RouteCreateAllocations: {"CreateAllocations", http.MethodPost, applicationPrefix + "/nodes/{node}/allocations"},
	RouteDeleteAllocation:  {"DeleteAllocation", http.MethodDelete, applicationPrefix + "/nodes/{node}/allocations/{allocation}"},

	RouteListLocations:  {"ListLocations", http.MethodGet, applicationPrefix + "/locations"},
	RouteGetLocation:    {"GetLocation", http.MethodGet, applicationPrefix + "/locations/{location}"},
	RouteCreateLocation: {"CreateLocation", http.MethodPost, applicationPrefix + "/locations"},
	RouteUpdateLocation: {"UpdateLocation", http.MethodPatch, applicationPrefix + "/locations/{location}"},
	RouteDeleteLocation: {"DeleteLocation", http.MethodDelete, applicationPrefix + "/locations/{location}"},

	RouteListNests: {"ListNests", http.MethodGet, applicationPrefix + "/nests"},
	RouteGetNest:   {"GetNest", http.MethodGet, applicationPrefix + "/nests/{nest}"},
	RouteListEggs:  {"ListEggs", http.MethodGet, applicationPrefix + "/nests/{nest}/eggs"},
	RouteGetEgg:    {"GetEgg", http.MethodGet, applicationPrefix + "/nests/{nest}/eggs/{egg}"},

	RouteListClientServers:   {"ListClientServers", http.MethodGet, clientPrefix},
	RouteGetClientServer:     {"GetClientServer", http.MethodGet, clientPrefix + "/servers/{server}"},
	RouteGetServerWebSocket:  {"GetServerWebSocket", http.MethodGet, clientPrefix + "/servers/{server}/websocket"},
	RouteGetServerResources:  {"GetServerResources", http.MethodGet, clientPrefix + "/servers/{server}/resources"},
	RouteSendServerCommand:   {"SendServerCommand", http.MethodPost, clientPrefix + "/servers/{server}/command"},
	RouteSetServerPowerState: {"SetServerPowerState", http.MethodPost, clientPrefix + "/servers/{server}/power"},

	RouteGetAccount:       {"GetAccount", http.MethodGet, clientPrefix + "/account"},
	RouteGetTwoFactor:     {"GetTwoFactor", http.MethodGet, clientPrefix + "/account/two-factor"},
	RouteEnableTwoFactor:  {"EnableTwoFactor", http.MethodPost, clientPrefix + "/account/two-factor"},
	RouteDisableTwoFactor: {"DisableTwoFactor", http.MethodDelete, clientPrefix + "/account/two-factor"},
	RouteUpdateEmail:      {"UpdateEmail", http.MethodPut, clientPrefix + "/account/email"},
	RouteUpdatePassword:   {"UpdatePassword", http.MethodPut, clientPrefix + "/account/password"},
	RouteListAPIKeys:      {"ListAPIKeys", http.MethodGet, clientPrefix + "/account/api-keys"},
	RouteCreateAPIKey:     {"CreateAPIKey", http.MethodPost, clientPrefix + "/account/api-keys"},
	RouteDeleteAPIKey:     {"DeleteAPIKey", http.MethodDelete, clientPrefix + "/account/api-keys/{identifier}"},

	RouteListDatabases:          {"ListDatabases", http.MethodGet, clientPrefix + "/servers/{server}/databases"},
	RouteCreateDatabase:         {"CreateDatabase", http.MethodPost, clientPrefix + "/servers/{server}/databases"},
	RouteRotateDatabasePassword: {"RotateDatabasePassword", http.MethodPost, clientPrefix + "/servers/{server}/databases/{database}/rotate-password"},
	RouteDeleteDatabase:         {"DeleteDatabase", http.MethodDelete, clientPrefix + "/servers/{server}/databases/{database}"},

	RouteListFiles:       {"ListFiles", http.MethodGet, clientPrefix + "/servers/{server}/files/list"},
	RouteGetFileContents: {"GetFileContents", http.MethodGet, clientPrefix + "/servers/{server}/files/contents"},
	RouteDownloadFile:    {"DownloadFile", http.MethodGet, clientPrefix + "/servers/{server}/files/download"},

	RouteListBackups:    {"ListBackups", http.MethodGet, clientPrefix + "/servers/{server}/backups"},
	RouteCreateBackup:   {"CreateBackup", http.MethodPost, clientPrefix + "/servers/{server}/backups"},
	RouteGetBackup:      {"GetBackup", http.MethodGet, clientPrefix + "/servers/{server}/backups/{backup}"},
	RouteDownloadBackup: {"DownloadBackup", http.MethodGet, clientPrefix + "/servers/{server}/backups/{backup}/download"},
	RouteDeleteBackup:   {"DeleteBackup", http.MethodDelete, clientPrefix + "/servers/{server}/backups/{backup}"},
}

// RouteKinds returns every defined route kind in declaration order.
func RouteKinds() []RouteKind {
	kinds := make([]RouteKind, 0, routeKindCount)
	for kind := range routeKindCount {
		kinds = append(kinds, kind)
	}

	return kinds
}

// String returns the route name, e.g. "GetUser".
func (k RouteKind) String() string {
	def, ok := routeTable[k]
	if !ok {
		return fmt.Sprintf("RouteKind(%d)", int(k))
	}

	return def.name
}

// Method returns the fixed HTTP method of the route kind.
func (k RouteKind) Method() string {
	return routeTable[k].method
}

// Template returns the path template, e.g. "/api/application/users/{user}".
func (k RouteKind) Template() string {
	return routeTable[k].template
}

// ParamCount returns the number of path parameters the template expects.
func (k RouteKind) ParamCount() int {
	return strings.Count(routeTable[k].template, "{")
}

// Endpoint is a resolved route: one method and one concrete path.
type Endpoint struct {
	Method string
	Path   string
}

// Route is an immutable route descriptor. Build it with NewRoute; the zero
// value is RouteListUsers.
type Route struct {
	kind   RouteKind
	params []string
}

// NewRoute binds path parameters to a route kind. Parameters fill the
// template placeholders in order.
func NewRoute(kind RouteKind, params ...string) (Route, error) {
	def, ok := routeTable[kind]
	if !ok {
		return Route{}, fmt.Errorf("%w: %d", ErrUnknownRoute, int(kind))
	}

	expected := strings.Count(def.template, "{")
	if len(params) != expected {
		return Route{}, fmt.Errorf("%w: %s expects %d, got %d", ErrRouteParamCount, def.name, expected, len(params))
	}

	for i, param := range params {
		if param == "" {
			return Route{}, fmt.Errorf("%w: %s parameter %d", ErrEmptyRouteParam, def.name, i+1)
		}
	}

	return Route{kind: kind, params: append([]string(nil), params...)}, nil
}

// Kind returns the route kind.
func (r Route) Kind() RouteKind {
	return r.kind
}

// Resolve produces the method and concrete path of the route.
func (r Route) Resolve() Endpoint {
	def := routeTable[r.kind]

	var path strings.Builder

	template := def.template
	next := 0

	for {
		open := strings.IndexByte(template, '{')
		if open < 0 {
			path.WriteString(template)

			break
		}

		closing := strings.IndexByte(template[open:], '}')
		if closing < 0 {
			path.WriteString(template)

			break
		}

		path.WriteString(template[:open])

		if next < len(r.params) {
			path.WriteString(url.PathEscape(r.params[next]))
		}

		next++
		template = template[open+closing+1:]
	}

	return Endpoint{Method: def.method, Path: path.String()}
}

// String renders the route as "METHOD /path".
func (r Route) String() string {
	endpoint := r.Resolve()

	return endpoint.Method + " " + endpoint.Path
}
