// Package access is the single place where the API decides whether a principal
// may perform an action on a resource.
//
// Decisions are made by a casbin enforcer. A request is described by the
// principal's subject (user:<username>, empty when anonymous), the principal's
// relational role towards the target (anonymous, authenticated or owner), the
// resource kind and the action. Roles form a hierarchy owner > authenticated >
// anonymous, so a policy granted to a lower role applies to the higher ones.
package access

import (
	"errors"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/persist"
)

type Action string

const (
	List           Action = "list"
	ListSubscribed Action = "list_subscribed"
	Retrieve       Action = "retrieve"
	Create         Action = "create"
	Update         Action = "update"
	Delete         Action = "delete"
	Rate           Action = "rate"
	Favorite       Action = "favorite"
	Subscribe      Action = "subscribe"
)

type Resource string

const (
	Article  Resource = "article"
	Comment  Resource = "comment"
	Profile  Resource = "profile"
	Category Resource = "category"
	Tag      Resource = "tag"
	Image    Resource = "image"
	File     Resource = "file"
	Account  Resource = "account"

	// Backstage is the admin area: category management, role grants, logs.
	Backstage Resource = "backstage"
)

// Relational roles. RoleAdmin is granted to individual users.
const (
	RoleAnonymous     = "anonymous"
	RoleAuthenticated = "authenticated"
	RoleOwner         = "owner"
	RoleAdmin         = "admin"
)

const (
	allow     = "allow"
	deny      = "deny"
	anyAction = "*"
)

var (
	ErrUnauthenticated = errors.New("authentication credentials were not provided")
	ErrForbidden       = errors.New("you do not have permission to perform this action")
)

// Principal is the user performing a request. The zero value is anonymous.
type Principal struct {
	ID       uint   `redis:"id"`
	Username string `redis:"username"`
}

func (p Principal) Authenticated() bool {
	return p.ID != 0
}

// Is reports whether the principal is the user with the given id.
func (p Principal) Is(userID uint) bool {
	return p.Authenticated() && p.ID == userID
}

// Subject is the casbin subject of the principal.
func (p Principal) Subject() string {
	if !p.Authenticated() {
		return ""
	}
	return UserSubject(p.Username)
}

func UserSubject(username string) string {
	return "user:" + username
}

// RoleOf returns the relational role of p towards a target owned by owner.
// A nil owner means the target has no owner (or there is no target).
func RoleOf(p Principal, owner *uint) string {
	switch {
	case !p.Authenticated():
		return RoleAnonymous
	case owner != nil && p.Is(*owner):
		return RoleOwner
	default:
		return RoleAuthenticated
	}
}

// DefaultRoles is the role hierarchy.
var DefaultRoles = [][]string{
	{RoleOwner, RoleAuthenticated},
	{RoleAuthenticated, RoleAnonymous},
}

// DefaultPolicies are the rules of the API.
var DefaultPolicies = [][]string{
	{RoleAnonymous, string(Article), string(List), allow},
	{RoleAnonymous, string(Article), string(Retrieve), allow},
	{RoleAuthenticated, string(Article), string(Create), allow},
	{RoleAuthenticated, string(Article), string(Rate), allow},
	{RoleAuthenticated, string(Article), string(Favorite), allow},
	{RoleOwner, string(Article), string(Update), allow},
	{RoleOwner, string(Article), string(Delete), allow},

	{RoleAnonymous, string(Comment), string(List), allow},
	{RoleAnonymous, string(Comment), string(Retrieve), allow},
	{RoleAuthenticated, string(Comment), string(Create), allow},
	{RoleAuthenticated, string(Comment), string(Rate), allow},
	{RoleOwner, string(Comment), string(Update), allow},
	{RoleOwner, string(Comment), string(Delete), allow},

	{RoleAnonymous, string(Profile), string(Retrieve), allow},
	{RoleAuthenticated, string(Profile), string(ListSubscribed), allow},
	{RoleAuthenticated, string(Profile), string(Subscribe), allow},
	{RoleOwner, string(Profile), string(Update), allow},
	{RoleAnonymous, string(Profile), string(Delete), deny},

	{RoleAnonymous, string(Category), string(List), allow},
	{RoleAnonymous, string(Category), string(Retrieve), allow},
	{RoleAdmin, string(Category), anyAction, allow},

	{RoleAnonymous, string(Tag), string(List), allow},
	{RoleAnonymous, string(Tag), string(Retrieve), allow},

	{RoleAnonymous, string(Image), string(Retrieve), allow},
	{RoleAuthenticated, string(Image), string(Create), allow},
	{RoleOwner, string(Image), string(Delete), allow},

	{RoleAnonymous, string(File), string(Retrieve), allow},
	{RoleAuthenticated, string(File), string(Create), allow},

	{RoleAuthenticated, string(Account), string(Delete), allow},

	{RoleAdmin, string(Backstage), anyAction, allow},
}

// NewModel builds the casbin model used by the Authorizer.
func NewModel() model.Model {
	m := model.NewModel()
	m.AddDef("r", "r", "sub, role, obj, act")
	m.AddDef("p", "p", "sub, obj, act, eft")
	m.AddDef("g", "g", "_, _")
	m.AddDef("e", "e", "some(where (p.eft == allow)) && !some(where (p.eft == deny))")
	m.AddDef("m", "m", "(g(r.sub, p.sub) || g(r.role, p.sub)) && r.obj == p.obj && actionMatch(r.act, p.act)")
	return m
}

// ActionMatch reports whether the requested action matches a policy action.
// The policy action "*" matches every action.
func ActionMatch(key1 string, key2 string) bool {
	if key2 == anyAction {
		return true
	}
	return key1 == key2
}

func ActionMatchFunc(args ...interface{}) (interface{}, error) {
	name1 := args[0].(string)
	name2 := args[1].(string)

	return ActionMatch(name1, name2), nil
}

type Authorizer struct {
	e *casbin.Enforcer
}

// NewAuthorizer creates an enforcer and seeds the default roles and policies.
// Policies are persisted through a when it is not nil.
func NewAuthorizer(a persist.Adapter) (*Authorizer, error) {
	var (
		e   *casbin.Enforcer
		err error
	)
	if a == nil {
		e, err = casbin.NewEnforcer(NewModel())
	} else {
		e, err = casbin.NewEnforcer(NewModel(), a)
	}
	if err != nil {
		return nil, err
	}
	e.AddFunction("actionMatch", ActionMatchFunc)

	for _, rule := range DefaultRoles {
		if _, err := e.AddGroupingPolicy(rule[0], rule[1]); err != nil {
			return nil, err
		}
	}
	for _, rule := range DefaultPolicies {
		if _, err := e.AddPolicy(rule[0], rule[1], rule[2], rule[3]); err != nil {
			return nil, err
		}
	}
	return &Authorizer{e: e}, nil
}

func (z *Authorizer) Enforcer() *casbin.Enforcer {
	return z.e
}

// Allowed is the decision function of the API. owner is the id of the user
// owning the target, or nil when there is no target.
func (z *Authorizer) Allowed(p Principal, act Action, res Resource, owner *uint) bool {
	ok, err := z.e.Enforce(p.Subject(), RoleOf(p, owner), string(res), string(act))
	return err == nil && ok
}

// Authorize is Allowed expressed as an error: ErrUnauthenticated for an
// anonymous principal, ErrForbidden otherwise.
func (z *Authorizer) Authorize(p Principal, act Action, res Resource, owner *uint) error {
	if z.Allowed(p, act, res, owner) {
		return nil
	}
	if !p.Authenticated() {
		return ErrUnauthenticated
	}
	return ErrForbidden
}

// GrantRole grants role to the user with the given username.
func (z *Authorizer) GrantRole(username, role string) error {
	_, err := z.e.AddGroupingPolicy(UserSubject(username), role)
	return err
}

// RevokeAll removes every rule that names the user.
func (z *Authorizer) RevokeAll(username string) error {
	if _, err := z.e.RemoveFilteredGroupingPolicy(0, UserSubject(username)); err != nil {
		return err
	}
	_, err := z.e.RemoveFilteredPolicy(0, UserSubject(username))
	return err
}

// RevokeRole takes role away from the user with the given username.
func (z *Authorizer) RevokeRole(username, role string) error {
	_, err := z.e.RemoveGroupingPolicy(UserSubject(username), role)
	return err
}

// UsersWithRole returns the usernames holding role directly.
func (z *Authorizer) UsersWithRole(role string) ([]string, error) {
	subjects, err := z.e.GetUsersForRole(role)
	if err != nil {
		return nil, err
	}
	usernames := make([]string, 0, len(subjects))
	for _, sub := range subjects {
		if name, ok := strings.CutPrefix(sub, "user:"); ok {
			usernames = append(usernames, name)
		}
	}
	return usernames, nil
}
