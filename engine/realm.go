// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package engine

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/blinklabs-io/leapfrog/database"
	"github.com/blinklabs-io/leapfrog/event"
	"github.com/blinklabs-io/leapfrog/governance"
)

// InitializeRealmRequest creates a realm. A zero QuorumPercent takes the
// engine default.
type InitializeRealmRequest struct {
	Signer governance.Address
	governance.RealmParams
}

func (e *Engine) InitializeRealm(
	ctx context.Context,
	req InitializeRealmRequest,
) (*governance.Realm, error) {
	var ret *governance.Realm
	err := e.observe(ctx, "InitializeRealm", func(ctx context.Context) error {
		if err := governance.RequireSigner(req.Signer, ""); err != nil {
			return err
		}
		params := req.RealmParams
		if params.Address == "" {
			params.Address = e.newAddress()
		}
		if params.QuorumPercent == 0 {
			params.QuorumPercent = e.defaultQuorumPercent
		}
		realm, err := governance.NewRealm(params)
		if err != nil {
			return err
		}
		return e.update(
			ctx,
			[]governance.Address{realm.Address},
			func(o *op) error {
				if err := e.db.SetRealm(realm, o.txn); err != nil {
					return err
				}
				e.publish(o, event.RealmInitializedEventType, event.RealmEvent{
					Realm:         string(realm.Address),
					Name:          realm.Name,
					CommunityMint: string(realm.CommunityMint),
				})
				o.onCommit(func() {
					e.logger.Info(
						"realm initialized",
						"component", "engine",
						"realm", realm.Address,
						"name", realm.Name,
						"signer", req.Signer,
					)
				})
				ret = realm
				return nil
			},
		)
	}, attribute.String("realm", string(req.Address)))
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (e *Engine) GetRealm(
	ctx context.Context,
	address governance.Address,
) (*governance.Realm, error) {
	var ret *governance.Realm
	err := e.observe(ctx, "GetRealm", func(context.Context) error {
		var err error
		ret, err = e.db.GetRealm(address, nil)
		return err
	}, attribute.String("realm", string(address)))
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (e *Engine) ListRealms(ctx context.Context) ([]*governance.Realm, error) {
	var ret []*governance.Realm
	err := e.observe(ctx, "ListRealms", func(context.Context) error {
		var err error
		ret, err = e.db.GetRealms(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// GetAccount returns whatever entity is stored at address
func (e *Engine) GetAccount(
	ctx context.Context,
	address governance.Address,
) (*database.Account, error) {
	var ret *database.Account
	err := e.observe(ctx, "GetAccount", func(context.Context) error {
		var err error
		ret, err = e.db.GetAccount(address, nil)
		return err
	}, attribute.String("account", string(address)))
	if err != nil {
		return nil, err
	}
	return ret, nil
}
