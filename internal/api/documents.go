package api

import "github.com/Rorical/GhostDeck/internal/graphql"

var (
	QueryDashboard = graphql.MustParse(`
  query getDashboard {
    version
    dockerVersion
    stackCount
    containers(stopped: false) {
      id
      name
      image
      service
      state
    }
  }
`)

	QueryStacks = graphql.MustParse(`
  query getStacks {
    stacks {
      name
      state
    }
  }
`)

	QueryStack = graphql.MustParse(`
  query getStack($name: String!) {
    stack(name: $name) {
      name
      state
    }
  }
`)

	MutationStartStack = graphql.MustParse(`
  mutation startStack($name: String!) {
    startStack(name: $name) {
      __typename
      ... on StartStackSuccess {
        name
      }
      ... on StartStackError {
        message
      }
    }
  }
`)

	MutationStopStack = graphql.MustParse(`
  mutation stopStack($name: String!) {
    stopStack(name: $name) {
      __typename
      ... on StopStackSuccess {
        name
      }
      ... on StopStackError {
        message
      }
    }
  }
`)

	MutationRestartStack = graphql.MustParse(`
  mutation restartStack($name: String!) {
    restartStack(name: $name) {
      __typename
      ... on RestartStackSuccess {
        name
      }
      ... on RestartStackError {
        message
      }
    }
  }
`)

	SubscriptionEvents = graphql.MustParse(`
  subscription subscribeEvents {
    events {
      id
      action
      imageFrom
      containerId
      containerName
      stackName
      serviceName
    }
  }
`)
)
