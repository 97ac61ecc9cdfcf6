// Copyright 2025 Blink Labs Software
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

package registry_test

import (
	"strings"
	"testing"

	"github.com/blinklabs-io/boarding/address"
	"github.com/blinklabs-io/boarding/event"
	"github.com/blinklabs-io/boarding/registry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testConfig     = testAddress("config")
	testAdmin      = testKeyAddress("admin")
	testFunder     = testAddress("funder")
	testRequestor  = testAddress("requestor")
	testCollection = testAddress("collection")
	testAuthority  = testAddress("authority")
	testStranger   = testKeyAddress("stranger")
)

type testEnv struct {
	program *registry.Program
	host    *mockHost
	request address.Address
}

func newTestEnv(
	t *testing.T,
	fee uint64,
	opts ...registry.ProgramOptionFunc,
) *testEnv {
	t.Helper()
	program := registry.NewProgram(opts...)
	host := newMockHost(program.ID())
	env := &testEnv{program: program, host: host}
	host.sign(testFunder, testConfig)
	env.mustExec(t, &registry.Instruction{
		CreateConfiguration: &registry.CreateConfigurationArgs{
			Config:        testConfig,
			Administrator: testAdmin,
			Fee:           fee,
		},
	})
	request, _, err := registry.DeriveRequestAddress(
		program.ID(),
		testConfig,
		testCollection,
	)
	require.NoError(t, err)
	env.request = request
	return env
}

func (e *testEnv) exec(inst *registry.Instruction) error {
	data, err := inst.Encode()
	if err != nil {
		return err
	}
	return e.program.Process(e.host, data)
}

func (e *testEnv) mustExec(t *testing.T, inst *registry.Instruction) {
	t.Helper()
	require.NoError(t, e.exec(inst))
}

func (e *testEnv) createRequestArgs() *registry.CreateRequestArgs {
	return &registry.CreateRequestArgs{
		Config:             testConfig,
		Request:            e.request,
		Requestor:          testRequestor,
		Seed:               testCollection,
		ResourceIdentifier: testCollection,
		ResourceAuthority:  testAuthority,
		Metadata: registry.Metadata{
			Name:        "Test Collection",
			MetadataURL: "https://example.com/meta.json",
			VanityURL:   "test-collection",
			TokenType:   "NFT",
			RequestType: "listing",
		},
	}
}

// createRequest creates the listing request and funds its escrow
func (e *testEnv) createRequest(t *testing.T, escrow uint64) {
	t.Helper()
	e.host.sign(testRequestor)
	e.mustExec(t, &registry.Instruction{CreateRequest: e.createRequestArgs()})
	e.host.fund(e.request, escrow)
}

func (e *testEnv) decide(approved bool) error {
	return e.exec(&registry.Instruction{
		Decide: &registry.DecideArgs{
			Request:  e.request,
			Config:   testConfig,
			Approved: approved,
		},
	})
}

func (e *testEnv) listingRequest(t *testing.T) *registry.ListingRequest {
	t.Helper()
	req, _, err := e.program.GetListingRequest(e.host, e.request)
	require.NoError(t, err)
	return req
}

func TestApproveThenRefundScenario(t *testing.T) {
	env := newTestEnv(t, 100)
	env.createRequest(t, 150)

	env.host.sign(testAdmin)
	require.NoError(t, env.decide(true))
	assert.Equal(t, uint64(100), env.host.balance(testAdmin))
	assert.Equal(t, uint64(50), env.host.balance(env.request))
	req := env.listingRequest(t)
	assert.Equal(t, registry.ApprovalStateApproved, req.ApprovalState)
	approved, err := env.program.IsApproved(env.host, env.request)
	require.NoError(t, err)
	assert.True(t, approved)

	env.host.sign(testRequestor)
	env.mustExec(t, &registry.Instruction{
		Refund: &registry.RefundArgs{Request: env.request},
	})
	assert.Equal(t, uint64(50), env.host.balance(testRequestor))
	assert.Equal(t, uint64(0), env.host.balance(env.request))

	// Record data survives the drain
	req = env.listingRequest(t)
	assert.Equal(t, "Test Collection", req.Metadata.Name)
}

func TestDoubleApproveInsufficientBalance(t *testing.T) {
	env := newTestEnv(t, 100)
	env.createRequest(t, 100)
	env.host.sign(testAdmin)
	require.NoError(t, env.decide(true))
	before := env.host.snapshot()
	err := env.decide(true)
	require.ErrorIs(t, err, registry.ErrInsufficientBalance)
	assert.Equal(t, before, env.host.snapshot())
	assert.Equal(t, uint64(100), env.host.balance(testAdmin))
}

func TestRepeatedDecisionRepeatsTransfer(t *testing.T) {
	env := newTestEnv(t, 100)
	env.createRequest(t, 250)
	env.host.sign(testAdmin)
	require.NoError(t, env.decide(true))
	require.NoError(t, env.decide(true))
	assert.Equal(t, uint64(200), env.host.balance(testAdmin))
	assert.Equal(t, uint64(50), env.host.balance(env.request))
}

// Strict mode deviates from the historical behavior of repeating the transfer
func TestStrictDecisionsRejectsRepeat(t *testing.T) {
	env := newTestEnv(t, 100, registry.WithStrictDecisions(true))
	env.createRequest(t, 250)
	env.host.sign(testAdmin)
	require.NoError(t, env.decide(true))
	require.ErrorIs(t, env.decide(true), registry.ErrAlreadyDecided)
	require.ErrorIs(t, env.decide(false), registry.ErrAlreadyDecided)
	assert.Equal(t, uint64(100), env.host.balance(testAdmin))
	assert.Equal(t, uint64(150), env.host.balance(env.request))
}

func TestDenyPaysRequestor(t *testing.T) {
	env := newTestEnv(t, 100)
	env.createRequest(t, 120)
	env.host.sign(testAdmin)
	require.NoError(t, env.decide(false))
	assert.Equal(t, uint64(0), env.host.balance(testAdmin))
	assert.Equal(t, uint64(100), env.host.balance(testRequestor))
	assert.Equal(t, uint64(20), env.host.balance(env.request))
	req := env.listingRequest(t)
	assert.Equal(t, registry.ApprovalStateDenied, req.ApprovalState)
	assert.False(t, req.IsApproved())
}

func TestDecideUnauthorized(t *testing.T) {
	env := newTestEnv(t, 100)
	env.createRequest(t, 150)
	before := env.host.snapshot()
	for _, signer := range []address.Address{testStranger, testRequestor, testAuthority} {
		env.host.sign(signer)
		require.ErrorIs(t, env.decide(true), registry.ErrUnauthorized)
		require.ErrorIs(t, env.decide(false), registry.ErrUnauthorized)
	}
	assert.Equal(t, before, env.host.snapshot())
	assert.Equal(
		t,
		registry.ApprovalStatePending,
		env.listingRequest(t).ApprovalState,
	)
}

func TestDecideCrossReference(t *testing.T) {
	env := newTestEnv(t, 100)
	env.createRequest(t, 150)
	otherConfig := testAddress("other-config")
	env.host.sign(testFunder, otherConfig)
	env.mustExec(t, &registry.Instruction{
		CreateConfiguration: &registry.CreateConfigurationArgs{
			Config:        otherConfig,
			Administrator: testStranger,
			Fee:           1,
		},
	})
	env.host.sign(testStranger)
	err := env.exec(&registry.Instruction{
		Decide: &registry.DecideArgs{
			Request:  env.request,
			Config:   otherConfig,
			Approved: true,
		},
	})
	require.ErrorIs(t, err, registry.ErrInvalidCrossReference)
	err = env.exec(&registry.Instruction{
		SetEnabled: &registry.SetEnabledArgs{
			Request: env.request,
			Config:  otherConfig,
			Enabled: false,
		},
	})
	require.ErrorIs(t, err, registry.ErrInvalidCrossReference)
	assert.Equal(t, uint64(150), env.host.balance(env.request))
}

func TestDecideNotFound(t *testing.T) {
	env := newTestEnv(t, 100)
	env.host.sign(testAdmin)
	require.ErrorIs(t, env.decide(true), registry.ErrNotFound)
}

func TestFeeModes(t *testing.T) {
	testDefs := []struct {
		name        string
		feeMode     registry.FeeMode
		expectedFee uint64
	}{
		{name: "live", feeMode: registry.FeeModeLive, expectedFee: 70},
		{name: "snapshot", feeMode: registry.FeeModeSnapshot, expectedFee: 100},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			env := newTestEnv(t, 100, registry.WithFeeMode(testDef.feeMode))
			env.createRequest(t, 200)
			env.host.sign(testAdmin)
			env.mustExec(t, &registry.Instruction{
				SetFee: &registry.SetFeeArgs{Config: testConfig, Fee: 70},
			})
			// The snapshot is never rewritten
			assert.Equal(t, uint64(100), env.listingRequest(t).FeeSnapshot)
			require.NoError(t, env.decide(true))
			assert.Equal(t, testDef.expectedFee, env.host.balance(testAdmin))
		})
	}
}

func TestCreateConfiguration(t *testing.T) {
	env := newTestEnv(t, 100)
	cfg, err := env.program.GetConfig(env.host, testConfig)
	require.NoError(t, err)
	assert.Equal(t, testAdmin, cfg.Administrator)
	assert.Equal(t, uint64(100), cfg.Fee)

	// Existing configuration
	env.host.sign(testFunder, testConfig)
	err = env.exec(&registry.Instruction{
		CreateConfiguration: &registry.CreateConfigurationArgs{
			Config:        testConfig,
			Administrator: testStranger,
			Fee:           1,
		},
	})
	require.ErrorIs(t, err, registry.ErrAlreadyExists)

	// Configuration address did not sign
	newConfig := testAddress("new-config")
	env.host.sign(testFunder)
	err = env.exec(&registry.Instruction{
		CreateConfiguration: &registry.CreateConfigurationArgs{
			Config:        newConfig,
			Administrator: testAdmin,
			Fee:           1,
		},
	})
	require.ErrorIs(t, err, registry.ErrUnauthorized)

	// Empty administrator
	env.host.sign(testFunder, newConfig)
	err = env.exec(&registry.Instruction{
		CreateConfiguration: &registry.CreateConfigurationArgs{
			Config: newConfig,
			Fee:    1,
		},
	})
	require.ErrorIs(t, err, registry.ErrInvalidArgument)

	// Program derived administrator
	err = env.exec(&registry.Instruction{
		CreateConfiguration: &registry.CreateConfigurationArgs{
			Config:        newConfig,
			Administrator: env.request,
			Fee:           1,
		},
	})
	require.ErrorIs(t, err, registry.ErrInvalidArgument)
	_, err = env.program.GetConfig(env.host, newConfig)
	require.ErrorIs(t, err, registry.ErrNotFound)
}

func TestTransferAdministration(t *testing.T) {
	env := newTestEnv(t, 100)
	newAdmin := testKeyAddress("new-admin")
	transfer := &registry.Instruction{
		TransferAdministration: &registry.TransferAdministrationArgs{
			Config:           testConfig,
			NewAdministrator: newAdmin,
		},
	}

	env.host.sign(testStranger)
	require.ErrorIs(t, env.exec(transfer), registry.ErrUnauthorized)

	// Same administrator is a no-op
	env.host.sign(testAdmin)
	eventCount := len(env.host.events)
	env.mustExec(t, &registry.Instruction{
		TransferAdministration: &registry.TransferAdministrationArgs{
			Config:           testConfig,
			NewAdministrator: testAdmin,
		},
	})
	assert.Len(t, env.host.events, eventCount)

	// Empty administrator
	err := env.exec(&registry.Instruction{
		TransferAdministration: &registry.TransferAdministrationArgs{
			Config: testConfig,
		},
	})
	require.ErrorIs(t, err, registry.ErrInvalidArgument)

	// Program derived addresses can't sign, so they can't administer
	err = env.exec(&registry.Instruction{
		TransferAdministration: &registry.TransferAdministrationArgs{
			Config:           testConfig,
			NewAdministrator: env.request,
		},
	})
	require.ErrorIs(t, err, registry.ErrInvalidArgument)
	cfg, err := env.program.GetConfig(env.host, testConfig)
	require.NoError(t, err)
	assert.Equal(t, testAdmin, cfg.Administrator)

	env.mustExec(t, transfer)
	cfg, err = env.program.GetConfig(env.host, testConfig)
	require.NoError(t, err)
	assert.Equal(t, newAdmin, cfg.Administrator)

	// Previous administrator lost its rights
	setFee := &registry.Instruction{
		SetFee: &registry.SetFeeArgs{Config: testConfig, Fee: 5},
	}
	require.ErrorIs(t, env.exec(setFee), registry.ErrUnauthorized)
	env.host.sign(newAdmin)
	env.mustExec(t, setFee)
}

func TestCreateRequest(t *testing.T) {
	env := newTestEnv(t, 100)
	env.createRequest(t, 0)
	req := env.listingRequest(t)
	assert.Equal(t, registry.ApprovalStatePending, req.ApprovalState)
	assert.True(t, req.Enabled)
	assert.Equal(t, uint64(100), req.FeeSnapshot)
	assert.Equal(t, testRequestor, req.Requestor)
	assert.Equal(t, testConfig, req.Config)
	assert.Equal(t, testCollection, req.ResourceIdentifier)
	assert.Equal(t, testAuthority, req.ResourceAuthority)
	assert.Nil(t, req.GovernanceReference)
	require.NoError(t, address.VerifyProgramAddress(
		env.request,
		[][]byte{testConfig.Bytes(), testCollection.Bytes()},
		req.Bump,
		env.program.ID(),
	))
	assert.Equal(
		t,
		[]event.EventType{
			registry.ConfigurationCreatedEventType,
			registry.RequestCreatedEventType,
		},
		env.host.eventTypes(),
	)
}

func TestCreateRequestSeededByAuthority(t *testing.T) {
	env := newTestEnv(t, 100)
	request, _, err := registry.DeriveRequestAddress(
		env.program.ID(),
		testConfig,
		testAuthority,
	)
	require.NoError(t, err)
	governance := testAddress("governance")
	args := env.createRequestArgs()
	args.Request = request
	args.Seed = testAuthority
	args.GovernanceReference = &governance
	env.host.sign(testRequestor)
	env.mustExec(t, &registry.Instruction{CreateRequest: args})
	req, _, err := env.program.GetListingRequest(env.host, request)
	require.NoError(t, err)
	require.NotNil(t, req.GovernanceReference)
	assert.Equal(t, governance, *req.GovernanceReference)
}

func TestCreateRequestFailures(t *testing.T) {
	env := newTestEnv(t, 100)
	env.createRequest(t, 0)

	otherRequest, _, err := registry.DeriveRequestAddress(
		env.program.ID(),
		testConfig,
		testStranger,
	)
	require.NoError(t, err)

	testDefs := []struct {
		name     string
		modify   func(*registry.CreateRequestArgs)
		signer   address.Address
		expected error
	}{
		{
			name:     "already exists",
			modify:   func(*registry.CreateRequestArgs) {},
			signer:   testRequestor,
			expected: registry.ErrAlreadyExists,
		},
		{
			name: "already exists with other values",
			modify: func(args *registry.CreateRequestArgs) {
				args.Metadata.Name = "Different"
				args.ResourceAuthority = testStranger
			},
			signer:   testRequestor,
			expected: registry.ErrAlreadyExists,
		},
		{
			name: "target is not derived address",
			modify: func(args *registry.CreateRequestArgs) {
				args.Request = testAddress("spoofed")
			},
			signer:   testRequestor,
			expected: registry.ErrAddressMismatch,
		},
		{
			name: "seed is not a registered identity",
			modify: func(args *registry.CreateRequestArgs) {
				args.Seed = testStranger
				args.Request = otherRequest
			},
			signer:   testRequestor,
			expected: registry.ErrAddressMismatch,
		},
		{
			name: "configuration missing",
			modify: func(args *registry.CreateRequestArgs) {
				args.Config = testAddress("missing-config")
			},
			signer:   testRequestor,
			expected: registry.ErrNotFound,
		},
		{
			name:     "requestor did not sign",
			modify:   func(*registry.CreateRequestArgs) {},
			signer:   testStranger,
			expected: registry.ErrUnauthorized,
		},
		{
			name: "name too long",
			modify: func(args *registry.CreateRequestArgs) {
				args.Metadata.Name = strings.Repeat("x", registry.MaxTextLength+1)
			},
			signer:   testRequestor,
			expected: registry.ErrInvalidArgument,
		},
		{
			name: "token type too long",
			modify: func(args *registry.CreateRequestArgs) {
				args.Metadata.TokenType = strings.Repeat("x", registry.MaxTypeLength+1)
			},
			signer:   testRequestor,
			expected: registry.ErrInvalidArgument,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			before := env.host.snapshot()
			args := env.createRequestArgs()
			testDef.modify(args)
			env.host.sign(testDef.signer)
			err := env.exec(&registry.Instruction{CreateRequest: args})
			require.ErrorIs(t, err, testDef.expected)
			assert.Equal(t, before, env.host.snapshot())
		})
	}
}

func TestCreateRequestRejectsForeignAccount(t *testing.T) {
	env := newTestEnv(t, 100)
	// Configuration data planted at an address the program doesn't own
	forged := testAddress("forged")
	cfgData, err := registry.EncodeConfig(&registry.Config{
		Administrator: testStranger,
	})
	require.NoError(t, err)
	env.host.get(forged).Data = cfgData
	args := env.createRequestArgs()
	args.Config = forged
	env.host.sign(testRequestor)
	err = env.exec(&registry.Instruction{CreateRequest: args})
	require.ErrorIs(t, err, registry.ErrWrongAccountType)
}

func TestSetEnabled(t *testing.T) {
	env := newTestEnv(t, 100)
	env.createRequest(t, 150)
	disable := &registry.Instruction{
		SetEnabled: &registry.SetEnabledArgs{
			Request: env.request,
			Config:  testConfig,
			Enabled: false,
		},
	}
	env.host.sign(testRequestor)
	require.ErrorIs(t, env.exec(disable), registry.ErrUnauthorized)
	assert.True(t, env.listingRequest(t).Enabled)

	env.host.sign(testAdmin)
	require.NoError(t, env.decide(true))
	env.mustExec(t, disable)
	req := env.listingRequest(t)
	assert.False(t, req.Enabled)
	assert.Equal(t, registry.ApprovalStateApproved, req.ApprovalState)
	// No funds move
	assert.Equal(t, uint64(50), env.host.balance(env.request))
}

func TestUpdateMetadata(t *testing.T) {
	env := newTestEnv(t, 100)
	env.createRequest(t, 0)
	newURL := "https://example.com/v2.json"
	newName := "Renamed"

	for _, editor := range []address.Address{testRequestor, testAuthority} {
		env.host.sign(editor)
		env.mustExec(t, &registry.Instruction{
			UpdateMetadata: &registry.UpdateMetadataArgs{
				Request:     env.request,
				Signer:      editor,
				MetadataURL: &newURL,
			},
		})
	}
	req := env.listingRequest(t)
	assert.Equal(t, newURL, req.Metadata.MetadataURL)
	// Untouched fields are kept
	assert.Equal(t, "Test Collection", req.Metadata.Name)

	before := env.host.snapshot()
	// Administrator and strangers can't edit, even claiming another identity
	for _, signer := range []address.Address{testStranger, testAdmin} {
		env.host.sign(signer)
		err := env.exec(&registry.Instruction{
			UpdateMetadata: &registry.UpdateMetadataArgs{
				Request: env.request,
				Signer:  signer,
				Name:    &newName,
			},
		})
		require.ErrorIs(t, err, registry.ErrUnauthorized)
		err = env.exec(&registry.Instruction{
			UpdateMetadata: &registry.UpdateMetadataArgs{
				Request: env.request,
				Signer:  testRequestor,
				Name:    &newName,
			},
		})
		require.ErrorIs(t, err, registry.ErrUnauthorized)
	}
	tooLong := strings.Repeat("x", registry.MaxTextLength+1)
	env.host.sign(testRequestor)
	err := env.exec(&registry.Instruction{
		UpdateMetadata: &registry.UpdateMetadataArgs{
			Request:   env.request,
			Signer:    testRequestor,
			Name:      &newName,
			VanityURL: &tooLong,
		},
	})
	require.ErrorIs(t, err, registry.ErrInvalidArgument)
	assert.Equal(t, before, env.host.snapshot())
}

func TestRefund(t *testing.T) {
	env := newTestEnv(t, 100)
	env.createRequest(t, 80)
	refund := &registry.Instruction{
		Refund: &registry.RefundArgs{Request: env.request},
	}

	for _, signer := range []address.Address{testAdmin, testAuthority, testStranger} {
		env.host.sign(signer)
		require.ErrorIs(t, env.exec(refund), registry.ErrUnauthorized)
	}
	assert.Equal(t, uint64(80), env.host.balance(env.request))

	env.host.sign(testRequestor)
	env.mustExec(t, refund)
	assert.Equal(t, uint64(80), env.host.balance(testRequestor))
	assert.Equal(t, uint64(0), env.host.balance(env.request))

	// Second refund is a no-op
	eventCount := len(env.host.events)
	env.mustExec(t, refund)
	assert.Equal(t, uint64(80), env.host.balance(testRequestor))
	assert.Equal(t, uint64(0), env.host.balance(env.request))
	assert.Len(t, env.host.events, eventCount)
}

func TestMetrics(t *testing.T) {
	promRegistry := prometheus.NewRegistry()
	env := newTestEnv(t, 100, registry.WithPromRegistry(promRegistry))
	env.createRequest(t, 100)
	env.host.sign(testAdmin)
	require.NoError(t, env.decide(true))
	require.Error(t, env.decide(true))
	count, err := testutil.GatherAndCount(
		promRegistry,
		"registry_instructions_total",
	)
	require.NoError(t, err)
	// create_configuration, create_request, decide success and failure
	assert.Equal(t, 4, count)
}
