// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

/*
Package authz provides role based authorization using Casbin.

The model and policy are embedded (model.conf, policy.csv) and may be
replaced with files through CASBIN_MODEL_PATH and CASBIN_POLICY_PATH.

# Roles

Roles inherit: anonymous < user < moderator < admin. Requests without a
token are evaluated as anonymous.

# Objects and actions

	games       read (anonymous), write (user: play, favorite), admin
	categories  read (anonymous), admin
	reviews     read (anonymous), write and delete (user), moderate (moderator)
	moderation  moderate (moderator)
	users       read (anonymous), write (user: own profile), admin

Ownership (review author, own profile) is enforced by the catalog service,
not by the policy.

Decisions are cached per role, object and action for CASBIN_CACHE_TTL.
*/
package authz
